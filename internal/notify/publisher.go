// Package notify delivers booking notifications: the AMQP publisher used
// by the booking service and the SMTP mailer used by the consumer.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// Publisher publishes notifications to a durable queue.  It dials the
// broker per message; notifications are rare next to the cost of a
// booking transaction.
type Publisher struct {
	url   string
	queue string
	now   func() time.Time
}

func NewPublisher(url, queueName string) *Publisher {
	return &Publisher{url: url, queue: queueName, now: time.Now}
}

// Notify implements booking.Notifier.  The error is returned to the
// caller, which logs it; nothing is retried.
func (p *Publisher) Notify(ctx context.Context, n booking.Notification) error {
	body, err := json.Marshal(p.event(n))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now().UTC(),
		Type:         n.Kind,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (p *Publisher) event(n booking.Notification) queue.NotificationEvent {
	return queue.NotificationEvent{
		EventID:       uuid.NewString(),
		Kind:          n.Kind,
		ReservationID: n.ReservationID,
		ClientID:      n.ClientID,
		Message:       n.Message,
		OccurredAt:    p.now().UTC().Format(time.RFC3339),
	}
}
