package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoutly/server/internal/module/order"
	"github.com/shoutly/server/internal/module/payment/provider"
	apperrors "github.com/shoutly/server/internal/shared/errors"
	"github.com/shoutly/server/internal/shared/metrics"
)

// Webhook processing results, used as metric labels and response statuses.
const (
	resultApplied   = "applied"
	resultDuplicate = "duplicate"
	resultIgnored   = "ignored"
	resultRejected  = "rejected"
)

// OrderService is the slice of the order lifecycle the payment module drives.
type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
	GetByPaymentIntentID(ctx context.Context, sessionID string) (*order.Order, error)
	BindPaymentSession(ctx context.Context, id uuid.UUID, sessionID, paymentStatus string) error
	ApplyPaymentEvent(ctx context.Context, o *order.Order, event order.Event, providerStatus string) (bool, error)
}

// Config holds payment service configuration.
type Config struct {
	SuccessURL string // Customer lands here after approving payment
	CancelURL  string // Customer lands here after abandoning checkout
	Currency   string // ISO currency code, lowercase
}

// Service creates checkout links and applies provider events to orders.
type Service struct {
	orders   OrderService
	registry *ProviderRegistry
	repo     Repository
	config   Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a new payment service.
func NewService(
	orders OrderService,
	registry *ProviderRegistry,
	repo Repository,
	config Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if config.Currency == "" {
		config.Currency = "usd"
	}
	return &Service{
		orders:   orders,
		registry: registry,
		repo:     repo,
		config:   config,
		metrics:  m,
		logger:   logger,
	}
}

// CreateLink creates a hosted checkout session for the order and binds it.
// Calling it again for the same order returns the existing link instead of
// opening a second provider session.
func (s *Service) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apperrors.Validation("invalid order id")
	}
	if req.Amount != nil && *req.Amount <= 0 {
		return nil, apperrors.Validation("amount must be greater than zero")
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.HasPaymentSession() {
		return s.existingLink(ctx, o)
	}

	if o.Status != order.StatusPending {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("order is %s; payment links are only created for pending orders", o.Status))
	}

	// The request may select a provider explicitly; the order's payment
	// method is the default. The charged amount is always the order's price.
	method := o.PaymentMethod
	if req.PaymentMethod != "" {
		method = order.PaymentMethod(req.PaymentMethod)
		if !order.ValidPaymentMethod(method) {
			return nil, apperrors.Validation(fmt.Sprintf("unsupported payment method %q", req.PaymentMethod))
		}
	}

	p, err := s.registry.GetByMethod(method)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("unsupported payment method %q", method))
	}

	checkout, err := p.CreateCheckout(ctx, &provider.CheckoutParams{
		OrderID:     o.ID.String(),
		AmountCents: o.Price,
		Currency:    s.config.Currency,
		Description: fmt.Sprintf("Custom video order %s", shortID(o.ID)),
		SuccessURL:  withOrderID(s.config.SuccessURL, o.ID),
		CancelURL:   withOrderID(s.config.CancelURL, o.ID),
	})
	if err != nil {
		s.recordSession(p.Name(), "failed")
		s.logger.Error("failed to create checkout session",
			zap.String("order_id", o.ID.String()),
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		return nil, apperrors.Provider(provider.UserFacingMessage(err), err)
	}

	if err := s.orders.BindPaymentSession(ctx, o.ID, checkout.SessionID, checkout.RawStatus); err != nil {
		// Lost a race with a concurrent link request; surface their link.
		if fresh, getErr := s.orders.Get(ctx, orderID); getErr == nil && fresh.HasPaymentSession() {
			return s.existingLink(ctx, fresh)
		}
		return nil, err
	}

	record := &Session{
		OrderID:     o.ID,
		Provider:    p.Name(),
		SessionID:   checkout.SessionID,
		ApprovalURL: checkout.ApprovalURL,
		RawStatus:   checkout.RawStatus,
		AmountCents: o.Price,
		Currency:    s.config.Currency,
	}
	if err := s.repo.CreateSession(ctx, record); err != nil {
		s.logger.Error("failed to store payment session",
			zap.String("order_id", o.ID.String()),
			zap.String("session_id", checkout.SessionID),
			zap.Error(err),
		)
	}

	s.recordSession(p.Name(), "created")
	s.logger.Info("payment link created",
		zap.String("order_id", o.ID.String()),
		zap.String("provider", p.Name()),
		zap.String("session_id", checkout.SessionID),
	)

	return &CreateLinkResponse{
		PaymentID:  checkout.SessionID,
		PaymentURL: checkout.ApprovalURL,
		Provider:   p.Name(),
	}, nil
}

func (s *Service) existingLink(ctx context.Context, o *order.Order) (*CreateLinkResponse, error) {
	record, err := s.repo.GetSessionBySessionID(ctx, *o.PaymentIntentID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, apperrors.Conflict("a payment session already exists for this order")
		}
		return nil, err
	}
	return &CreateLinkResponse{
		PaymentID:  record.SessionID,
		PaymentURL: record.ApprovalURL,
		Provider:   record.Provider,
	}, nil
}

// Capture captures an approved payment and applies the result to the order.
// Used by the PayPal return flow, where approval does not capture by itself.
func (s *Service) Capture(ctx context.Context, req *CaptureRequest) (*CaptureResponse, error) {
	p, o, err := s.resolve(ctx, req.PaymentID, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	result, err := p.Capture(ctx, req.PaymentID)
	if err != nil {
		s.logger.Error("capture failed",
			zap.String("payment_id", req.PaymentID),
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		return nil, apperrors.Provider(provider.UserFacingMessage(err), err)
	}

	s.syncSessionStatus(ctx, result.SessionID, result.RawStatus)

	event := order.EventPaymentPending
	if result.Captured {
		event = order.EventPaymentCaptured
	}
	if _, err := s.orders.ApplyPaymentEvent(ctx, o, event, result.RawStatus); err != nil {
		return nil, err
	}

	return &CaptureResponse{
		PaymentID:   result.SessionID,
		Provider:    p.Name(),
		Status:      result.RawStatus,
		Captured:    result.Captured,
		OrderID:     o.ID.String(),
		OrderStatus: string(o.Status),
	}, nil
}

// GetStatus queries the provider and reconciles the order with what it says.
// This is the fallback path for webhooks that never arrived: polling the
// status of a paid session moves the order forward exactly like the webhook
// would have.
func (s *Service) GetStatus(ctx context.Context, paymentID, paymentMethod string) (*StatusResponse, error) {
	p, o, err := s.resolve(ctx, paymentID, paymentMethod)
	if err != nil {
		return nil, err
	}

	status, err := p.GetStatus(ctx, paymentID)
	if err != nil {
		return nil, apperrors.Provider(provider.UserFacingMessage(err), err)
	}

	s.syncSessionStatus(ctx, status.SessionID, status.RawStatus)

	if event, ok := kindToEvent(status.Kind); ok {
		if _, err := s.orders.ApplyPaymentEvent(ctx, o, event, status.RawStatus); err != nil {
			s.logger.Error("failed to reconcile order from payment status",
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		}
	}

	return &StatusResponse{
		PaymentID:   status.SessionID,
		Provider:    p.Name(),
		Status:      status.RawStatus,
		AmountCents: status.AmountCents,
		Currency:    status.Currency,
		OrderID:     o.ID.String(),
		OrderStatus: string(o.Status),
	}, nil
}

// HandleWebhook verifies, deduplicates, and applies a provider notification.
// The returned string is the acknowledgement status for the provider.
func (s *Service) HandleWebhook(ctx context.Context, providerName string, payload []byte, headers http.Header) (string, error) {
	p, err := s.registry.Get(providerName)
	if err != nil {
		s.recordWebhook(providerName, resultRejected)
		return "", apperrors.NotFound("webhook endpoint")
	}

	if err := p.VerifyWebhookSignature(payload, headers); err != nil {
		s.recordWebhook(providerName, resultRejected)
		s.logger.Warn("webhook signature verification failed",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		return "", apperrors.Unauthorized("invalid webhook signature")
	}

	event, err := p.ParseWebhookEvent(payload)
	if err != nil {
		s.recordWebhook(providerName, resultRejected)
		return "", apperrors.Validation("malformed webhook payload")
	}

	if event.EventID != "" {
		exists, err := s.repo.EventExists(ctx, providerName, event.EventID)
		if err != nil {
			s.logger.Error("failed to check webhook event existence", zap.Error(err))
			// Keep going; the order update is conditional and replay-safe.
		}
		if exists {
			s.recordWebhook(providerName, resultDuplicate)
			return "already_processed", nil
		}
		if err := s.repo.CreateEvent(ctx, &WebhookEventRecord{
			Provider:  providerName,
			EventID:   event.EventID,
			EventType: event.RawType,
			SessionID: event.SessionID,
			Data:      string(payload),
		}); err != nil {
			if errors.Is(err, ErrEventExists) {
				s.recordWebhook(providerName, resultDuplicate)
				return "already_processed", nil
			}
			s.logger.Error("failed to store webhook event", zap.Error(err))
		}
	}

	result, processErr := s.processEvent(ctx, providerName, event)

	if event.EventID != "" {
		if err := s.repo.MarkEventProcessed(ctx, providerName, event.EventID, processErr); err != nil {
			s.logger.Error("failed to mark webhook event processed", zap.Error(err))
		}
	}

	s.recordWebhook(providerName, result)
	if processErr != nil {
		return "", processErr
	}
	return result, nil
}

func (s *Service) processEvent(ctx context.Context, providerName string, event *provider.WebhookEvent) (string, error) {
	mapped, ok := kindToEvent(event.Kind)
	if !ok || event.SessionID == "" {
		s.logger.Debug("ignoring webhook event",
			zap.String("provider", providerName),
			zap.String("type", event.RawType),
		)
		return resultIgnored, nil
	}

	o, err := s.orders.GetByPaymentIntentID(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			// Unknown sessions are acknowledged so the provider stops
			// retrying; there is nothing here for the event to act on.
			s.logger.Warn("webhook for unknown payment session",
				zap.String("provider", providerName),
				zap.String("session_id", event.SessionID),
				zap.String("type", event.RawType),
			)
			return resultIgnored, nil
		}
		return "", fmt.Errorf("load order for session: %w", err)
	}

	s.syncSessionStatus(ctx, event.SessionID, event.RawStatus)

	changed, err := s.orders.ApplyPaymentEvent(ctx, o, mapped, event.RawStatus)
	if err != nil {
		return "", err
	}
	if !changed {
		return resultDuplicate, nil
	}
	return resultApplied, nil
}

// resolve finds the provider by method name and the order by session ID.
func (s *Service) resolve(ctx context.Context, paymentID, paymentMethod string) (provider.Provider, *order.Order, error) {
	method := order.PaymentMethod(paymentMethod)
	if !order.ValidPaymentMethod(method) {
		return nil, nil, apperrors.Validation(fmt.Sprintf("unsupported payment method %q", paymentMethod))
	}
	p, err := s.registry.GetByMethod(method)
	if err != nil {
		return nil, nil, apperrors.Validation(fmt.Sprintf("unsupported payment method %q", paymentMethod))
	}

	o, err := s.orders.GetByPaymentIntentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, nil, apperrors.NotFound("payment")
		}
		return nil, nil, err
	}
	return p, o, nil
}

func (s *Service) syncSessionStatus(ctx context.Context, sessionID, rawStatus string) {
	if sessionID == "" || rawStatus == "" {
		return
	}
	if err := s.repo.UpdateSessionStatus(ctx, sessionID, rawStatus); err != nil {
		s.logger.Warn("failed to update payment session status",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

func (s *Service) recordSession(provider, status string) {
	if s.metrics != nil {
		s.metrics.RecordPaymentSession(provider, status)
	}
}

func (s *Service) recordWebhook(provider, result string) {
	if s.metrics != nil {
		s.metrics.RecordWebhookEvent(provider, result)
	}
}

func kindToEvent(kind provider.EventKind) (order.Event, bool) {
	switch kind {
	case provider.EventCaptured:
		return order.EventPaymentCaptured, true
	case provider.EventFailed:
		return order.EventPaymentFailed, true
	case provider.EventPending:
		return order.EventPaymentPending, true
	default:
		return "", false
	}
}

func withOrderID(base string, id uuid.UUID) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("order_id", id.String())
	u.RawQuery = q.Encode()
	return u.String()
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
