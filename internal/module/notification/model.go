package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Notification template names.
const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateAdminOrderAlert   = "admin_order_alert"
	TemplateOrderCompleted    = "order_completed"
	TemplatePaymentFailed     = "payment_failed"
)

// Record is an audit row for every notification attempt. Delivery is
// best-effort; the record is what ops checks when a customer asks where
// their email went.
type Record struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Template   string         `json:"template" gorm:"not null;index"`
	Recipients pq.StringArray `json:"recipients" gorm:"type:text[];not null"`
	Subject    string         `json:"subject" gorm:"not null"`
	OrderID    *uuid.UUID     `json:"order_id,omitempty" gorm:"type:uuid;index"`
	Sent       bool           `json:"sent" gorm:"default:false"`
	Error      *string        `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName returns the database table name.
func (Record) TableName() string {
	return "notification_records"
}
