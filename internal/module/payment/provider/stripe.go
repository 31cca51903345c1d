package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// StripeProvider implements Provider on top of Stripe Checkout Sessions.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider creates a new Stripe provider.
func NewStripeProvider(config *StripeConfig) *StripeProvider {
	stripe.Key = config.APIKey
	return &StripeProvider{
		webhookSecret: config.WebhookSecret,
	}
}

// Name returns the provider name.
func (p *StripeProvider) Name() string {
	return "stripe"
}

// --- Checkout ---

func (p *StripeProvider) CreateCheckout(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(params.OrderID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(params.Currency),
					UnitAmount: stripe.Int64(params.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.Description),
					},
				},
			},
		},
		Metadata: map[string]string{"order_id": params.OrderID},
	}
	sessionParams.Context = ctx

	s, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CheckoutSession{
		SessionID:   s.ID,
		ApprovalURL: s.URL,
		RawStatus:   string(s.PaymentStatus),
	}, nil
}

// Capture returns the session's current state. Stripe Checkout captures
// automatically on completion, so there is no separate capture call to make.
func (p *StripeProvider) Capture(ctx context.Context, sessionID string) (*CaptureResult, error) {
	s, err := p.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &CaptureResult{
		SessionID:   s.ID,
		RawStatus:   string(s.PaymentStatus),
		AmountCents: s.AmountTotal,
		Currency:    string(s.Currency),
		Captured:    s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if s.PaymentIntent != nil {
		result.CaptureID = s.PaymentIntent.ID
	}
	return result, nil
}

func (p *StripeProvider) GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	s, err := p.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionStatus{
		SessionID:   s.ID,
		RawStatus:   string(s.PaymentStatus),
		Kind:        mapStripeSessionState(s),
		AmountCents: s.AmountTotal,
		Currency:    string(s.Currency),
	}, nil
}

func (p *StripeProvider) getSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return s, nil
}

// --- Webhooks ---

func (p *StripeProvider) VerifyWebhookSignature(payload []byte, headers http.Header) error {
	_, err := webhook.ConstructEvent(payload, headers.Get("Stripe-Signature"), p.webhookSecret)
	if err != nil {
		return fmt.Errorf("verify stripe signature: %w", err)
	}
	return nil
}

func (p *StripeProvider) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parse stripe event: %w", err)
	}

	result := &WebhookEvent{
		EventID: event.ID,
		RawType: string(event.Type),
		Kind:    EventIgnored,
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		result.Kind = EventCaptured
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		result.Kind = EventFailed
	default:
		return result, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session: %w", err)
	}
	result.SessionID = s.ID
	result.RawStatus = string(s.PaymentStatus)

	// A completed session can still be unpaid when the payment method is
	// asynchronous; the async_payment_succeeded event follows later.
	if event.Type == "checkout.session.completed" && s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		result.Kind = EventPending
	}

	return result, nil
}

func mapStripeSessionState(s *stripe.CheckoutSession) EventKind {
	if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return EventCaptured
	}
	if s.Status == stripe.CheckoutSessionStatusExpired {
		return EventFailed
	}
	return EventPending
}
