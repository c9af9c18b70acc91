package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kirinyoku/seatplan/internal/domain"
)

const (
	prefetch   = 50
	maxBackoff = 30 * time.Second
)

// Handler processes one event. A returned error rejects the message
// without requeueing it.
type Handler func(ctx context.Context, ev domain.PlanSaved) error

type Consumer struct {
	url    string
	logger *slog.Logger
}

func NewConsumer(url string, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{url: url, logger: logger}
}

// Consume delivers plan-saved events to handler until ctx is done,
// reconnecting with exponential backoff when the broker goes away.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("amqp dial failed",
				slog.String("err", err.Error()),
				slog.Duration("retry_in", backoff),
			)
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn, handler)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("amqp consume loop ended", slog.String("err", err.Error()))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, handler Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.logger.Warn("amqp qos failed", slog.String("err", err.Error()))
	}

	if err := declare(ch); err != nil {
		return err
	}

	msgs, err := ch.ConsumeWithContext(ctx, PlanSavedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body, handler); err != nil {
				c.logger.Warn("plan event rejected", slog.String("err", err.Error()))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte, handler Handler) error {
	ev, err := DecodePlanSaved(body)
	if err != nil {
		return err
	}
	return handler(ctx, ev)
}

// DecodePlanSaved parses a message body. Events without a plan id are
// rejected.
func DecodePlanSaved(body []byte) (domain.PlanSaved, error) {
	var ev domain.PlanSaved
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.PlanID == "" {
		return ev, errors.New("missing plan_id")
	}
	return ev, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
