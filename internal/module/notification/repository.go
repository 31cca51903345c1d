package notification

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for notification audit records.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Record, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Record, error) {
	var records []*Record
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
