package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/models"
)

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

// Enabled reports whether the channel has anyone to notify.
func (c EmailConfig) Enabled() bool {
	return len(c.Recipients) > 0
}

// sendFunc matches smtp.SendMail; swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel sends alert notifications over SMTP.
type EmailChannel struct {
	cfg  EmailConfig
	send sendFunc
}

// NewEmailChannel creates an SMTP notification channel.
func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg, send: smtp.SendMail}
}

func (e *EmailChannel) Type() string {
	return "email"
}

func (e *EmailChannel) Send(_ context.Context, alert *models.Alert) error {
	if !e.cfg.Enabled() {
		return fmt.Errorf("email channel has no recipients configured")
	}

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	msg := e.compose(alert)

	if err := e.send(addr, auth, e.cfg.From, e.cfg.Recipients, msg); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

func (e *EmailChannel) compose(alert *models.Alert) []byte {
	severity := Severity(alert.RiskScore)
	subject := fmt.Sprintf("[%s] Fraud alert for transaction %s",
		strings.ToUpper(severity), alert.TransactionID)

	var body strings.Builder
	fmt.Fprintf(&body, "A fraud alert was raised.\r\n\r\n")
	fmt.Fprintf(&body, "Alert ID:       %s\r\n", alert.ID)
	fmt.Fprintf(&body, "Transaction ID: %s\r\n", alert.TransactionID)
	fmt.Fprintf(&body, "User ID:        %s\r\n", alert.UserID)
	fmt.Fprintf(&body, "Risk score:     %d (%s)\r\n", alert.RiskScore, severity)
	fmt.Fprintf(&body, "Raised at:      %s\r\n\r\n", alert.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&body, "Triggered rules:\r\n")
	for _, reason := range models.SplitReasons(alert.Reasons) {
		fmt.Fprintf(&body, "  - %s\r\n", reason)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.cfg.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=utf-8\r\n")
	fmt.Fprintf(&msg, "\r\n%s", body.String())

	return []byte(msg.String())
}
