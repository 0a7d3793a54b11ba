// Package mail delivers transactional email.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/metrics"
)

type Message struct {
	Kind    string
	To      string
	Subject string
	Body    string
}

// Mailer sends one message. Implementations must not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when SMTP_HOST is configured and a logging
// mailer otherwise, wrapped with delivery metrics.
func New(cfg *config.Config) (Mailer, error) {
	if !cfg.SMTPEnabled() {
		return Instrumented{Next: LogMailer{}}, nil
	}
	m, err := NewSMTPMailer(cfg)
	if err != nil {
		return nil, err
	}
	return Instrumented{Next: m}, nil
}

// SMTPMailer delivers through an SMTP relay, upgrading to TLS when the
// server offers STARTTLS.
type SMTPMailer struct {
	from   string
	client *gomail.Client
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", cfg.SMTPPort, err)
	}

	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUsername),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPMailer{from: cfg.MailFrom, client: client}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := m.message(msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// message builds the MIME message; headers are RFC 2047 encoded.
func (m *SMTPMailer) message(msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return out, nil
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("email (not delivered: SMTP not configured)", "kind", msg.Kind, "to", msg.To, "subject", msg.Subject)
	return nil
}

// Instrumented counts deliveries by kind and result.
type Instrumented struct {
	Next Mailer
}

func (m Instrumented) Send(ctx context.Context, msg Message) error {
	err := m.Next.Send(ctx, msg)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.EmailsSent.WithLabelValues(msg.Kind, result).Inc()
	return err
}

// Recorder keeps sent messages in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// Last returns the most recent message of kind.
func (r *Recorder) Last(kind string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].Kind == kind {
			return r.sent[i], true
		}
	}
	return Message{}, false
}
