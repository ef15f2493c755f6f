package email

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"

	"github.com/jhillyerd/enmime"
	"github.com/resend/resend-go/v2"
)

const (
	ProviderLog    = "log"
	ProviderResend = "resend"
	ProviderSMTP   = "smtp"
)

// Message is a single outgoing email with plain text and HTML bodies.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Provider     string
	From         string
	ResendAPIKey string
	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
}

// LogSender logs emails instead of sending them. Used for local dev.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "login email (not sent)", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// SMTPSender builds a multipart MIME message and hands it to an SMTP relay.
type SMTPSender struct {
	transport enmime.Sender
	fromName  string
	fromAddr  string
}

func NewSMTPSender(transport enmime.Sender, from string) (*SMTPSender, error) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}
	return &SMTPSender{transport: transport, fromName: addr.Name, fromAddr: addr.Address}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := enmime.Builder().
		From(s.fromName, s.fromAddr).
		To("", msg.To).
		Subject(msg.Subject).
		Text([]byte(msg.Text))
	if msg.HTML != "" {
		b = b.HTML([]byte(msg.HTML))
	}

	if err := b.Send(s.transport); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender picks the implementation named by cfg.Provider.
func NewSender(cfg Config, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case ProviderLog, "":
		return &LogSender{logger: logger.With("component", "email")}, nil
	case ProviderResend:
		return &ResendSender{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.From}, nil
	case ProviderSMTP:
		var auth smtp.Auth
		if cfg.SMTPUsername != "" {
			host, _, err := net.SplitHostPort(cfg.SMTPAddr)
			if err != nil {
				return nil, fmt.Errorf("parse smtp addr: %w", err)
			}
			auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, host)
		}
		return NewSMTPSender(enmime.NewSMTP(cfg.SMTPAddr, auth), cfg.From)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
