package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows order listings.
type Filter struct {
	Status *Status
}

// Repository defines the interface for order data access.
//
// The conditional updates (UpdateStatusIf, CompleteIf, BindPaymentSession)
// are single UPDATE statements guarded by the current value, so two racing
// requests can never both win the same transition.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error)
	List(ctx context.Context, filter *Filter, limit, offset int) ([]*Order, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, paymentStatus string) (bool, error)
	OverrideStatus(ctx context.Context, id uuid.UUID, to Status) (bool, error)
	CompleteIf(ctx context.Context, id uuid.UUID, finalVideoKey string) (bool, error)
	BindPaymentSession(ctx context.Context, id uuid.UUID, sessionID, paymentStatus string) error
	SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSession
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&order, "payment_intent_id = ?", paymentIntentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter *Filter, limit, offset int) ([]*Order, int64, error) {
	var orders []*Order
	var total int64

	query := r.db.WithContext(ctx).Model(&Order{})
	if filter != nil && filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateStatusIf moves the order from `from` to `to` in one conditional
// UPDATE. Returns false when the order was no longer in `from`, which callers
// treat as "someone else already applied this transition".
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, paymentStatus string) (bool, error) {
	updates := map[string]any{"status": to}
	if paymentStatus != "" {
		updates["payment_status"] = paymentStatus
	}

	result := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// OverrideStatus sets the status unconditionally (admin override path).
func (r *repository) OverrideStatus(ctx context.Context, id uuid.UUID, to Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CompleteIf sets status=complete and the final video key only while the
// order is still paid or processing.
func (r *repository) CompleteIf(ctx context.Context, id uuid.UUID, finalVideoKey string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status IN ?", id, []Status{StatusPaid, StatusProcessing}).
		Updates(map[string]any{
			"status":          StatusComplete,
			"final_video_key": finalVideoKey,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// BindPaymentSession attaches a provider session to an order that has none.
func (r *repository) BindPaymentSession(ctx context.Context, id uuid.UUID, sessionID, paymentStatus string) error {
	result := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND payment_intent_id IS NULL", id).
		Updates(map[string]any{
			"payment_intent_id": sessionID,
			"payment_status":    paymentStatus,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSession
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionAlreadyBound
	}
	return nil
}

func (r *repository) SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	return r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Update("payment_status", paymentStatus).Error
}
