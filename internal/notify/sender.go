// AngelaMos | 2026
// sender.go

// Package notify delivers outgoing messages to users.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/yamdb/internal/config"
)

type Message struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// Sender delivers a message. Delivery is best effort: callers log the
// error and carry on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConfirmationMessage renders the registration message carrying code.
func ConfirmationMessage(cfg config.MailConfig, to, code string) Message {
	return Message{
		From:    cfg.From,
		To:      to,
		Subject: cfg.Subject,
		Body:    fmt.Sprintf(cfg.Template, code),
		SentAt:  time.Now().UTC(),
	}
}

// LogSender writes messages to the structured log instead of delivering
// them. It is the development backend.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "outgoing message",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// New returns the sender selected by cfg.Backend.
func New(cfg config.MailConfig, logger *slog.Logger) (Sender, error) {
	switch cfg.Backend {
	case config.MailBackendLog, "":
		return NewLogSender(logger), nil
	case config.MailBackendAMQP:
		return NewAMQPSender(cfg.AMQPURL, cfg.Queue, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}
