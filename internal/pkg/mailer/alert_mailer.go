package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"grant-insight-be/internal/config"
)

type IAlertMailer interface {
	SendAlert(subject string, body string) error
}

// GomailAlertMailer delivers operational alerts (token budget warnings,
// emergency stops) to the configured admin address.
type GomailAlertMailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewGomailAlertMailer(cfg *config.Config) *GomailAlertMailer {
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password)
	return &GomailAlertMailer{
		dialer: dialer,
		from:   fmt.Sprintf("%s <%s>", cfg.SMTP.SenderName, cfg.SMTP.Email),
		to:     cfg.App.AdminEmail,
	}
}

func (m *GomailAlertMailer) SendAlert(subject string, body string) error {
	if m.to == "" {
		return fmt.Errorf("admin email not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}
