package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Payment metrics
	PaymentSessionsTotal   *prometheus.CounterVec
	PaymentRequestDuration *prometheus.HistogramVec
	ProviderHealth         *prometheus.GaugeVec

	// Webhook metrics
	WebhookEventsTotal *prometheus.CounterVec

	// Order metrics
	OrderTransitionsTotal *prometheus.CounterVec

	// Notification metrics
	NotificationsTotal *prometheus.CounterVec

	// Auth metrics
	AuthEventsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "shoutly"
	}

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Payment metrics
		PaymentSessionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "sessions_total",
				Help:      "Total number of checkout sessions created",
			},
			[]string{"provider", "status"}, // status: created, failed
		),
		PaymentRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "request_duration_seconds",
				Help:      "Payment provider call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "operation"},
		),
		ProviderHealth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		// Webhook metrics
		WebhookEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "events_total",
				Help:      "Total number of webhook events received",
			},
			[]string{"provider", "result"}, // result: applied, duplicate, ignored, rejected
		),

		// Order metrics
		OrderTransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "transitions_total",
				Help:      "Total number of order status transitions",
			},
			[]string{"from", "to"},
		),

		// Notification metrics
		NotificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notification",
				Name:      "emails_total",
				Help:      "Total number of notification emails attempted",
			},
			[]string{"template", "status"}, // status: sent, failed
		),

		// Auth metrics
		AuthEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "events_total",
				Help:      "Total number of auth events",
			},
			[]string{"event"}, // login_success, login_failed, token_invalid
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPaymentSession records a checkout session creation attempt.
func (m *Metrics) RecordPaymentSession(provider, status string) {
	m.PaymentSessionsTotal.WithLabelValues(provider, status).Inc()
}

// RecordPaymentRequest records a provider call duration.
func (m *Metrics) RecordPaymentRequest(provider, operation string, duration time.Duration) {
	m.PaymentRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// SetProviderHealth sets the health status of a payment provider.
func (m *Metrics) SetProviderHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.ProviderHealth.WithLabelValues(provider).Set(value)
}

// RecordWebhookEvent records a webhook event outcome.
func (m *Metrics) RecordWebhookEvent(provider, result string) {
	m.WebhookEventsTotal.WithLabelValues(provider, result).Inc()
}

// RecordOrderTransition records an order status transition.
func (m *Metrics) RecordOrderTransition(from, to string) {
	m.OrderTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordNotification records a notification email attempt.
func (m *Metrics) RecordNotification(template, status string) {
	m.NotificationsTotal.WithLabelValues(template, status).Inc()
}

// RecordAuthEvent records an auth event.
func (m *Metrics) RecordAuthEvent(event string) {
	m.AuthEventsTotal.WithLabelValues(event).Inc()
}

func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
