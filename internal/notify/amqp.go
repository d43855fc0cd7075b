// AngelaMos | 2026
// amqp.go

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (channel, func() error, error)

// AMQPSender publishes messages to a durable queue. A separate mail
// worker consumes the queue and performs SMTP delivery.
type AMQPSender struct {
	url    string
	queue  string
	dial   dialFunc
	logger *slog.Logger
}

func NewAMQPSender(url, queue string, logger *slog.Logger) *AMQPSender {
	return &AMQPSender{
		url:    url,
		queue:  queue,
		dial:   dialAMQP,
		logger: logger,
	}
}

func dialAMQP(url string) (channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	return ch, conn.Close, nil
}

func (s *AMQPSender) Send(ctx context.Context, msg Message) error {
	ch, closeConn, err := s.dial(s.url)
	if err != nil {
		s.logger.ErrorContext(ctx, "amqp dial failed", "error", err)
		return err
	}
	defer func() {
		_ = ch.Close()
		_ = closeConn()
	}()

	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", s.queue, err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		s.logger.ErrorContext(ctx, "amqp publish failed",
			"queue", s.queue,
			"error", err,
		)
		return fmt.Errorf("publish to %s: %w", s.queue, err)
	}

	return nil
}

// Ping checks that the broker accepts connections and the queue can be
// declared.
func (s *AMQPSender) Ping(_ context.Context) error {
	ch, closeConn, err := s.dial(s.url)
	if err != nil {
		return err
	}
	defer func() {
		_ = ch.Close()
		_ = closeConn()
	}()

	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", s.queue, err)
	}

	return nil
}
