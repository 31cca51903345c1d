package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/shoutly/server/internal/module/user"
)

// Status represents the business status of an order.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPaid          Status = "paid"
	StatusProcessing    Status = "processing"
	StatusComplete      Status = "complete"
	StatusPaymentFailed Status = "payment_failed"
	StatusCancelled     Status = "cancelled"
)

// PaymentMethod identifies which provider handles the order's payment.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// ValidPaymentMethod reports whether the method names a supported provider.
func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentMethodCard || m == PaymentMethodPayPal
}

// Order represents a custom-video order.
//
// PaymentIntentID is the provider-assigned session identifier. It is nullable
// so unpaid orders don't collide on the unique index, and unique so one
// provider session can never be bound to two orders.
type Order struct {
	ID               uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Status           Status        `json:"status" gorm:"not null;default:pending;index"`
	Price            int64         `json:"price" gorm:"not null"` // In cents
	Duration         int           `json:"duration" gorm:"not null"` // In seconds
	Script           string        `json:"script,omitempty"`
	OriginalVideoKey string        `json:"original_video_key" gorm:"not null"`
	FinalVideoKey    string        `json:"final_video_key,omitempty"`
	PaymentMethod    PaymentMethod `json:"payment_method" gorm:"not null"`
	PaymentIntentID  *string       `json:"payment_intent_id,omitempty" gorm:"uniqueIndex"`
	// PaymentStatus tracks the provider's raw session state, independent of Status.
	PaymentStatus string    `json:"payment_status,omitempty"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	User *user.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsTerminal returns true when no further transitions are expected.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusComplete || o.Status == StatusCancelled
}

// HasPaymentSession returns true when a provider session is bound to the order.
func (o *Order) HasPaymentSession() bool {
	return o.PaymentIntentID != nil && *o.PaymentIntentID != ""
}
