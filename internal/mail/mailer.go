package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"crm-service/internal/config"
)

// Mailer sends a single plain-text email. Implementations must report
// transport failures: callers rely on the error to roll back the operation
// that triggered the mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New selects a mailer implementation from configuration
func New(cfg config.EmailConfig, logger *logrus.Logger) Mailer {
	if cfg.Backend == "smtp" {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(cfg, logger)
}

// SMTPMailer delivers mail over SMTP with plain auth
type SMTPMailer struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	fromName  string
}

// NewSMTPMailer creates an SMTP-backed mailer
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUser,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Send delivers the message synchronously
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		m.fromName, m.fromEmail, to, subject, body)

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.fromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes messages to the logger instead of sending them. Used in
// development and tests.
type LogMailer struct {
	fromEmail string
	logger    *logrus.Entry
}

// NewLogMailer creates a log-backed mailer
func NewLogMailer(cfg config.EmailConfig, logger *logrus.Logger) *LogMailer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogMailer{
		fromEmail: cfg.FromEmail,
		logger:    logger.WithField("component", "mailer"),
	}
}

// Send logs the message and always succeeds
func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.WithFields(logrus.Fields{
		"from":    m.fromEmail,
		"to":      to,
		"subject": subject,
	}).Info(body)
	return nil
}
