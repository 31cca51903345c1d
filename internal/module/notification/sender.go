package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SMTPConfig holds SMTP configuration.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string
}

// SMTPSender sends emails via SMTP.
type SMTPSender struct {
	config *SMTPConfig
	logger *zap.Logger
}

// NewSMTPSender creates a new SMTP sender.
func NewSMTPSender(config *SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		config: config,
		logger: logger,
	}
}

// Send delivers an HTML email to the recipients.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	from := s.config.FromAddress
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, joinAddresses(to), subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.User != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.FromAddress, to, []byte(msg)); err != nil {
		s.logger.Error("failed to send email",
			zap.Strings("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("email sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}

func joinAddresses(to []string) string {
	out := ""
	for i, addr := range to {
		if i > 0 {
			out += ", "
		}
		out += addr
	}
	return out
}
