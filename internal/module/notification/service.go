package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoutly/server/internal/shared/metrics"
)

// OrderEmailData carries the order fields templates need. Keeping a plain
// struct here avoids coupling notification to the order module.
type OrderEmailData struct {
	OrderID       uuid.UUID
	CustomerName  string
	CustomerEmail string
	PriceCents    int64
	Duration      int
	PaymentMethod string
	DownloadURL   string
}

// Service renders and sends order emails. Every attempt is recorded;
// delivery failures are logged but never propagated to the caller's
// transaction.
type Service struct {
	sender       Sender
	repo         Repository
	metrics      *metrics.Metrics
	logger       *zap.Logger
	alertAddress string
}

// NewService creates a new notification service.
func NewService(sender Sender, repo Repository, m *metrics.Metrics, logger *zap.Logger, alertAddress string) *Service {
	return &Service{
		sender:       sender,
		repo:         repo,
		metrics:      m,
		logger:       logger,
		alertAddress: alertAddress,
	}
}

// SendOrderConfirmation emails the customer that their order was received.
func (s *Service) SendOrderConfirmation(ctx context.Context, data *OrderEmailData) {
	subject := fmt.Sprintf("Order confirmation – %s", shortID(data.OrderID))
	s.send(ctx, TemplateOrderConfirmation, orderConfirmationTemplate, subject, []string{data.CustomerEmail}, data)
}

// SendAdminOrderAlert emails the operations inbox about a freshly paid order.
func (s *Service) SendAdminOrderAlert(ctx context.Context, data *OrderEmailData) {
	if s.alertAddress == "" {
		s.logger.Warn("admin alert address not configured, skipping alert",
			zap.String("order_id", data.OrderID.String()))
		return
	}
	subject := fmt.Sprintf("New paid order – %s", shortID(data.OrderID))
	s.send(ctx, TemplateAdminOrderAlert, adminOrderAlertTemplate, subject, []string{s.alertAddress}, data)
}

// SendOrderCompleted emails the customer their finished video link.
func (s *Service) SendOrderCompleted(ctx context.Context, data *OrderEmailData) {
	subject := fmt.Sprintf("Your video is ready – %s", shortID(data.OrderID))
	s.send(ctx, TemplateOrderCompleted, orderCompletedTemplate, subject, []string{data.CustomerEmail}, data)
}

// SendPaymentFailed emails the customer that their payment did not complete.
func (s *Service) SendPaymentFailed(ctx context.Context, data *OrderEmailData) {
	subject := fmt.Sprintf("Payment issue – %s", shortID(data.OrderID))
	s.send(ctx, TemplatePaymentFailed, paymentFailedTemplate, subject, []string{data.CustomerEmail}, data)
}

func (s *Service) send(ctx context.Context, templateName, tmpl, subject string, to []string, data *OrderEmailData) {
	body, err := renderTemplate(tmpl, templateData(data))
	if err != nil {
		s.logger.Error("failed to render email template",
			zap.String("template", templateName), zap.Error(err))
		s.record(ctx, templateName, subject, to, data.OrderID, err)
		return
	}

	sendErr := s.sender.Send(ctx, to, subject, body)
	s.record(ctx, templateName, subject, to, data.OrderID, sendErr)

	status := "sent"
	if sendErr != nil {
		status = "failed"
	}
	if s.metrics != nil {
		s.metrics.RecordNotification(templateName, status)
	}
}

func (s *Service) record(ctx context.Context, templateName, subject string, to []string, orderID uuid.UUID, sendErr error) {
	record := &Record{
		Template:   templateName,
		Recipients: to,
		Subject:    subject,
		Sent:       sendErr == nil,
	}
	if orderID != uuid.Nil {
		id := orderID
		record.OrderID = &id
	}
	if sendErr != nil {
		msg := sendErr.Error()
		record.Error = &msg
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to record notification",
			zap.String("template", templateName), zap.Error(err))
	}
}

func templateData(data *OrderEmailData) map[string]any {
	return map[string]any{
		"OrderID":       data.OrderID.String(),
		"CustomerName":  data.CustomerName,
		"CustomerEmail": data.CustomerEmail,
		"Price":         FormatPrice(data.PriceCents),
		"Duration":      data.Duration,
		"PaymentMethod": data.PaymentMethod,
		"DownloadURL":   data.DownloadURL,
	}
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}
