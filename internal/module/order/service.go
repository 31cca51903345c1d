package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoutly/server/internal/module/notification"
	"github.com/shoutly/server/internal/module/storage"
	"github.com/shoutly/server/internal/module/user"
	apperrors "github.com/shoutly/server/internal/shared/errors"
	"github.com/shoutly/server/internal/shared/metrics"
)

// VideoStore is the slice of object storage the order service needs.
type VideoStore interface {
	ObjectExists(ctx context.Context, key string) (bool, error)
	PresignDownload(ctx context.Context, key string) (*storage.PresignedURL, error)
}

// Notifier sends order lifecycle emails. Implementations are best-effort;
// the service never fails a transition because an email did not go out.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, data *notification.OrderEmailData)
	SendAdminOrderAlert(ctx context.Context, data *notification.OrderEmailData)
	SendOrderCompleted(ctx context.Context, data *notification.OrderEmailData)
	SendPaymentFailed(ctx context.Context, data *notification.OrderEmailData)
}

// Service orchestrates the order lifecycle. It is the only component that
// mutates order status.
type Service struct {
	repo     Repository
	users    user.Repository
	sm       *StateMachine
	videos   VideoStore
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a new order service.
func NewService(
	repo Repository,
	users user.Repository,
	videos VideoStore,
	notifier Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		sm:       NewStateMachine(),
		videos:   videos,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// Create validates the request and creates an order in state pending.
// No payment provider is contacted here; link creation is a separate call.
func (s *Service) Create(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if req.Price <= 0 {
		return nil, apperrors.Validation("price must be greater than zero")
	}
	if req.Duration < 1 {
		return nil, apperrors.Validation("duration must be at least 1 second")
	}
	if !ValidPaymentMethod(req.PaymentMethod) {
		return nil, apperrors.Validation(fmt.Sprintf("unsupported payment method %q", req.PaymentMethod))
	}

	exists, err := s.videos.ObjectExists(ctx, req.OriginalVideoKey)
	if err != nil {
		return nil, apperrors.Provider("storage unavailable", err)
	}
	if !exists {
		return nil, apperrors.Validation("original video was not found in storage; upload it first")
	}

	customer, err := s.users.FindOrCreate(ctx, &user.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	o := &Order{
		Status:           StatusPending,
		Price:            req.Price,
		Duration:         req.Duration,
		Script:           req.Script,
		OriginalVideoKey: req.OriginalVideoKey,
		PaymentMethod:    req.PaymentMethod,
		UserID:           customer.ID,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	o.User = customer

	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.Int64("price", o.Price),
		zap.String("payment_method", string(o.PaymentMethod)),
	)

	return o, nil
}

// Get returns an order by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, err
	}
	return o, nil
}

// GetByPaymentIntentID returns the order bound to a provider session.
func (s *Service) GetByPaymentIntentID(ctx context.Context, sessionID string) (*Order, error) {
	return s.repo.GetByPaymentIntentID(ctx, sessionID)
}

// List returns orders newest-first with an optional status filter.
func (s *Service) List(ctx context.Context, filter *Filter, limit, offset int) ([]*Order, int64, error) {
	if filter != nil && filter.Status != nil && !validStatus(*filter.Status) {
		return nil, 0, apperrors.Validation(fmt.Sprintf("unknown status %q", *filter.Status))
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// BindPaymentSession attaches a provider session ID to the order.
func (s *Service) BindPaymentSession(ctx context.Context, id uuid.UUID, sessionID, paymentStatus string) error {
	err := s.repo.BindPaymentSession(ctx, id, sessionID, paymentStatus)
	if err != nil {
		if errors.Is(err, ErrDuplicateSession) {
			return apperrors.Conflict("payment session is already bound to another order")
		}
		return err
	}
	return nil
}

// ApplyPaymentEvent applies a provider-reported payment event to the order.
// Returns changed=false when the event leads nowhere from the current state,
// which covers both webhook replays and stale events. Notifications fire only
// on the request that actually won the transition, so a replayed
// payment_captured sends exactly one email.
func (s *Service) ApplyPaymentEvent(ctx context.Context, o *Order, event Event, providerStatus string) (bool, error) {
	next, ok := s.sm.NextState(o.Status, event)
	if !ok {
		// Keep the raw provider state current even when the business status holds still
		if providerStatus != "" && providerStatus != o.PaymentStatus {
			if err := s.repo.SetPaymentStatus(ctx, o.ID, providerStatus); err != nil {
				s.logger.Warn("failed to update payment status",
					zap.String("order_id", o.ID.String()), zap.Error(err))
			}
			o.PaymentStatus = providerStatus
		}
		return false, nil
	}

	won, err := s.repo.UpdateStatusIf(ctx, o.ID, o.Status, next, providerStatus)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	if !won {
		// Raced with another delivery of the same event; the winner notified.
		return false, nil
	}

	from := o.Status
	o.Status = next
	if providerStatus != "" {
		o.PaymentStatus = providerStatus
	}
	s.recordTransition(from, next)

	s.logger.Info("order transitioned",
		zap.String("order_id", o.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
		zap.String("event", string(event)),
	)

	switch next {
	case StatusPaid:
		s.notifier.SendOrderConfirmation(ctx, s.emailData(ctx, o))
		s.notifier.SendAdminOrderAlert(ctx, s.emailData(ctx, o))
	case StatusPaymentFailed:
		s.notifier.SendPaymentFailed(ctx, s.emailData(ctx, o))
	}

	return true, nil
}

// AdminComplete sets the final video and moves the order to complete.
// Allowed only from paid or processing.
func (s *Service) AdminComplete(ctx context.Context, id uuid.UUID, finalVideoKey string) (*Order, error) {
	if finalVideoKey == "" {
		return nil, apperrors.Validation("final_video_key is required")
	}

	exists, err := s.videos.ObjectExists(ctx, finalVideoKey)
	if err != nil {
		return nil, apperrors.Provider("storage unavailable", err)
	}
	if !exists {
		return nil, apperrors.Validation("final video was not found in storage")
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.sm.CanComplete(o.Status) {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("order is %s; only paid or processing orders can be completed", o.Status))
	}

	won, err := s.repo.CompleteIf(ctx, id, finalVideoKey)
	if err != nil {
		return nil, fmt.Errorf("complete order: %w", err)
	}
	if !won {
		// Status moved between the read and the update
		return nil, apperrors.InvalidState("order is no longer in a completable state")
	}

	from := o.Status
	o.Status = StatusComplete
	o.FinalVideoKey = finalVideoKey
	s.recordTransition(from, StatusComplete)

	data := s.emailData(ctx, o)
	if link, err := s.videos.PresignDownload(ctx, finalVideoKey); err == nil {
		data.DownloadURL = link.URL
	} else {
		s.logger.Warn("failed to presign final video for completion email",
			zap.String("order_id", o.ID.String()), zap.Error(err))
	}
	s.notifier.SendOrderCompleted(ctx, data)

	s.logger.Info("order completed",
		zap.String("order_id", o.ID.String()),
		zap.String("final_video_key", finalVideoKey),
	)

	return o, nil
}

// AdminOverrideStatus sets the status directly. Only the documented enum is
// accepted, and complete still requires a final video on record.
func (s *Service) AdminOverrideStatus(ctx context.Context, id uuid.UUID, to Status) (*Order, error) {
	if !ValidOverrideStatus(to) {
		return nil, apperrors.Validation(
			fmt.Sprintf("invalid status %q; valid values: %v", to, OverrideStatuses()))
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if to == StatusComplete && o.FinalVideoKey == "" {
		return nil, apperrors.InvalidState("cannot mark complete without a final video")
	}

	if o.Status == to {
		return o, nil
	}

	won, err := s.repo.OverrideStatus(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("override status: %w", err)
	}
	if !won {
		return nil, apperrors.NotFound("order")
	}

	s.recordTransition(o.Status, to)
	s.logger.Info("order status overridden",
		zap.String("order_id", id.String()),
		zap.String("from", string(o.Status)),
		zap.String("to", string(to)),
	)
	o.Status = to

	return o, nil
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrOrderNotFound) {
		return apperrors.NotFound("order")
	}
	return err
}

// AttachVideoURLs presigns fresh download links onto the response.
// Links are never persisted; every read gets its own short-lived URL.
func (s *Service) AttachVideoURLs(ctx context.Context, o *Order, resp *OrderResponse) {
	if o.OriginalVideoKey != "" {
		if link, err := s.videos.PresignDownload(ctx, o.OriginalVideoKey); err == nil {
			resp.VideoURL = link.URL
		} else {
			s.logger.Warn("failed to presign original video",
				zap.String("order_id", o.ID.String()), zap.Error(err))
		}
	}
	if o.FinalVideoKey != "" {
		if link, err := s.videos.PresignDownload(ctx, o.FinalVideoKey); err == nil {
			resp.FinalVideoURL = link.URL
		} else {
			s.logger.Warn("failed to presign final video",
				zap.String("order_id", o.ID.String()), zap.Error(err))
		}
	}
}

func (s *Service) emailData(ctx context.Context, o *Order) *notification.OrderEmailData {
	data := &notification.OrderEmailData{
		OrderID:       o.ID,
		PriceCents:    o.Price,
		Duration:      o.Duration,
		PaymentMethod: string(o.PaymentMethod),
	}

	customer := o.User
	if customer == nil {
		var err error
		customer, err = s.users.GetByID(ctx, o.UserID)
		if err != nil {
			s.logger.Warn("failed to load customer for notification",
				zap.String("order_id", o.ID.String()), zap.Error(err))
			return data
		}
		o.User = customer
	}

	data.CustomerName = customer.FullName()
	data.CustomerEmail = customer.Email
	return data
}

func (s *Service) recordTransition(from, to Status) {
	if s.metrics != nil {
		s.metrics.RecordOrderTransition(string(from), string(to))
	}
}

func validStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing, StatusComplete, StatusPaymentFailed, StatusCancelled:
		return true
	default:
		return false
	}
}
