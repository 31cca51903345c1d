package provider

import (
	"context"
	"net/http"
)

// EventKind classifies a provider webhook event into the handful of outcomes
// the order lifecycle cares about. Anything else is Ignored and acknowledged
// without touching the order.
type EventKind string

const (
	EventCaptured EventKind = "captured"
	EventFailed   EventKind = "failed"
	EventPending  EventKind = "pending"
	EventIgnored  EventKind = "ignored"
)

// CheckoutParams describes the hosted checkout to create.
type CheckoutParams struct {
	OrderID     string
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is a hosted payment page created at the provider.
type CheckoutSession struct {
	SessionID   string // Provider's session/order ID; stored as the order's payment intent
	ApprovalURL string // URL the customer is redirected to
	RawStatus   string // Provider's own status string, stored verbatim
}

// CaptureResult is the outcome of an explicit capture call.
type CaptureResult struct {
	SessionID   string
	RawStatus   string
	CaptureID   string
	AmountCents int64
	Currency    string
	Captured    bool
}

// SessionStatus is a point-in-time status query result.
type SessionStatus struct {
	SessionID   string
	RawStatus   string
	Kind        EventKind
	AmountCents int64
	Currency    string
}

// WebhookEvent is a parsed, signature-verified provider notification.
type WebhookEvent struct {
	EventID   string
	RawType   string
	Kind      EventKind
	SessionID string
	RawStatus string
}

// Provider defines the interface for hosted-checkout payment providers.
// Amounts cross this boundary in minor units; providers that speak decimal
// strings convert internally.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// CreateCheckout creates a hosted checkout session for the order.
	CreateCheckout(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error)

	// Capture captures an approved payment. Providers that capture
	// automatically return the current state without a second charge.
	Capture(ctx context.Context, sessionID string) (*CaptureResult, error)

	// GetStatus queries the provider for the session's current state.
	GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error)

	// VerifyWebhookSignature verifies the notification against the raw body
	// and transport headers. A non-nil error means the request must be
	// rejected before any parsing.
	VerifyWebhookSignature(payload []byte, headers http.Header) error

	// ParseWebhookEvent parses a verified notification body.
	ParseWebhookEvent(payload []byte) (*WebhookEvent, error)
}
