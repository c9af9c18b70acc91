// Package queue carries plan-saved events over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kirinyoku/seatplan/internal/domain"
)

// PlanSavedQueue is the durable queue plan-saved events go to.
const PlanSavedQueue = "seatplan.plan.saved"

// Publisher opens a connection per event. Saves are rare enough that a
// long-lived channel is not worth the reconnect handling.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// PublishPlanSaved sends ev as a persistent JSON message.
func (p *Publisher) PublishPlanSaved(ctx context.Context, ev domain.PlanSaved) error {
	const op = "queue.Publisher.PublishPlanSaved"

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("%s: dial: %w", op, err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%s: channel: %w", op, err)
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", PlanSavedQueue, false, false, msg); err != nil {
		return fmt.Errorf("%s: publish: %w", op, err)
	}

	return nil
}

func declare(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(PlanSavedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
