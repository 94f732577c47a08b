package mailer

import (
	"context"
	"fmt"

	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Message is a single outgoing mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends mail.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates an SMTPMailer from the SMTP_* settings.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer only logs messages. Used when no SMTP relay is configured.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "log_mailer").Logger()}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("Mail (not sent, SMTP disabled)")
	return nil
}

// New picks the SMTP mailer when configured and the log mailer otherwise.
func New(cfg *config.Config, log zerolog.Logger) Mailer {
	if cfg.MailEnabled() {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(log)
}
