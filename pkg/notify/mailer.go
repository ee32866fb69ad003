// Package notify delivers booking confirmation emails. Delivery is
// best-effort: callers log failures and never couple the booking outcome to
// the mail transport.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"roomsched/pkg/config"
	"roomsched/pkg/logger"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewMailer returns an SMTP-backed mailer, or a logging stub when no mail
// host is configured so local environments work without a mail server.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.EmailHost == "" {
		cfg.Log.Info("Email host not configured, notifications will be logged only")
		return &logMailer{log: cfg.Log}
	}

	var auth smtp.Auth
	if cfg.EmailUser != "" {
		auth = smtp.PlainAuth("", cfg.EmailUser, cfg.EmailPass, cfg.EmailHost)
	}

	return &smtpMailer{
		addr: fmt.Sprintf("%s:%d", cfg.EmailHost, cfg.EmailPort),
		auth: auth,
		from: cfg.EmailFrom,
	}
}

func (m *smtpMailer) Send(_ context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String()))
}

type logMailer struct {
	log *logger.Logger
}

func (m *logMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.Info("Email notification (log only)", "to", to, "subject", subject)
	return nil
}
