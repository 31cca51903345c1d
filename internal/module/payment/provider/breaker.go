package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/shoutly/server/internal/shared/metrics"
)

// BreakerProvider wraps a Provider with a circuit breaker around the calls
// that hit the provider's API. Webhook verification and parsing are local
// operations and bypass the breaker.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[any]
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// WithBreaker decorates a provider with a circuit breaker.
func WithBreaker(inner Provider, m *metrics.Metrics, logger *zap.Logger) *BreakerProvider {
	bp := &BreakerProvider{
		inner:   inner,
		metrics: m,
		logger:  logger,
	}

	bp.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("payment provider breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if m != nil {
				m.SetProviderHealth(name, to == gobreaker.StateClosed)
			}
		},
	})

	if m != nil {
		m.SetProviderHealth(inner.Name(), true)
	}
	return bp
}

func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

func (p *BreakerProvider) CreateCheckout(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error) {
	result, err := p.execute(ctx, "create_checkout", func() (any, error) {
		return p.inner.CreateCheckout(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return result.(*CheckoutSession), nil
}

func (p *BreakerProvider) Capture(ctx context.Context, sessionID string) (*CaptureResult, error) {
	result, err := p.execute(ctx, "capture", func() (any, error) {
		return p.inner.Capture(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*CaptureResult), nil
}

func (p *BreakerProvider) GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	result, err := p.execute(ctx, "get_status", func() (any, error) {
		return p.inner.GetStatus(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*SessionStatus), nil
}

func (p *BreakerProvider) VerifyWebhookSignature(payload []byte, headers http.Header) error {
	return p.inner.VerifyWebhookSignature(payload, headers)
}

func (p *BreakerProvider) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	return p.inner.ParseWebhookEvent(payload)
}

func (p *BreakerProvider) execute(ctx context.Context, operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := p.breaker.Execute(fn)
	if p.metrics != nil {
		p.metrics.RecordPaymentRequest(p.inner.Name(), operation, time.Since(start))
	}
	if err != nil {
		p.logger.Warn("payment provider call failed",
			zap.String("provider", p.inner.Name()),
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
	return result, err
}
