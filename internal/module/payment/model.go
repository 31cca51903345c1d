package payment

import (
	"time"

	"github.com/google/uuid"
)

// Session is the local record of a hosted checkout session created at a
// provider. The order row carries the session ID for lookups; this table
// keeps the approval URL and raw provider state so link creation can be
// repeated without a second provider call.
type Session struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	Provider    string    `json:"provider" gorm:"not null"`
	SessionID   string    `json:"session_id" gorm:"uniqueIndex;not null"`
	ApprovalURL string    `json:"approval_url"`
	RawStatus   string    `json:"raw_status"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency" gorm:"default:usd"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Session) TableName() string {
	return "payment_sessions"
}

// WebhookEventRecord is a stored provider webhook event, used to deduplicate
// redeliveries and to keep an audit trail of processing outcomes.
type WebhookEventRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Provider    string    `gorm:"not null;uniqueIndex:idx_webhook_provider_event"`
	EventID     string    `gorm:"not null;uniqueIndex:idx_webhook_provider_event"`
	EventType   string    `gorm:"not null"`
	SessionID   string    `gorm:"index"`
	Data        string    `gorm:"type:jsonb"`
	Processed   bool      `gorm:"default:false"`
	ProcessedAt *time.Time
	Error       *string
	CreatedAt   time.Time
}

// TableName returns the database table name.
func (WebhookEventRecord) TableName() string {
	return "payment_webhook_events"
}
