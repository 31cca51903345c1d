package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for user data access.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	FindOrCreate(ctx context.Context, candidate *User) (*User, error)
	Update(ctx context.Context, user *User) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new user repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindOrCreate returns the user with the candidate's email, creating the
// record if none exists. Contact details of returning customers are kept
// current with the latest submission.
func (r *repository) FindOrCreate(ctx context.Context, candidate *User) (*User, error) {
	candidate.Email = normalizeEmail(candidate.Email)

	existing, err := r.GetByEmail(ctx, candidate.Email)
	if err == nil {
		changed := false
		if candidate.FirstName != "" && candidate.FirstName != existing.FirstName {
			existing.FirstName = candidate.FirstName
			changed = true
		}
		if candidate.LastName != "" && candidate.LastName != existing.LastName {
			existing.LastName = candidate.LastName
			changed = true
		}
		if candidate.Phone != "" && candidate.Phone != existing.Phone {
			existing.Phone = candidate.Phone
			changed = true
		}
		if changed {
			if err := r.Update(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if err := r.Create(ctx, candidate); err != nil {
		// Concurrent creation with the same email loses the race; reuse the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetByEmail(ctx, candidate.Email)
		}
		return nil, err
	}
	return candidate, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
