package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists payment sessions and webhook event records.
type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSessionByOrderID(ctx context.Context, orderID uuid.UUID) (*Session, error)
	GetSessionBySessionID(ctx context.Context, sessionID string) (*Session, error)
	UpdateSessionStatus(ctx context.Context, sessionID, rawStatus string) error

	EventExists(ctx context.Context, provider, eventID string) (bool, error)
	CreateEvent(ctx context.Context, e *WebhookEventRecord) error
	MarkEventProcessed(ctx context.Context, provider, eventID string, processErr error) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) GetSessionByOrderID(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) GetSessionBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpdateSessionStatus(ctx context.Context, sessionID, rawStatus string) error {
	return r.db.WithContext(ctx).Model(&Session{}).
		Where("session_id = ?", sessionID).
		Update("raw_status", rawStatus).Error
}

func (r *repository) EventExists(ctx context.Context, provider, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&WebhookEventRecord{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateEvent(ctx context.Context, e *WebhookEventRecord) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEventExists
	}
	return err
}

func (r *repository) MarkEventProcessed(ctx context.Context, provider, eventID string, processErr error) error {
	now := time.Now()
	updates := map[string]any{
		"processed":    true,
		"processed_at": &now,
	}
	if processErr != nil {
		msg := processErr.Error()
		updates["error"] = &msg
	}
	return r.db.WithContext(ctx).Model(&WebhookEventRecord{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Updates(updates).Error
}
