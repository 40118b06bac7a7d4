package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ContactLookup resolves the client a notification is addressed to.
type ContactLookup interface {
	GetByID(ctx context.Context, clientID uint64) (model.Client, error)
}

// Mailer sends an HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Consumer drains the notification queue.  Every message is appended to a
// log file and, when a mailer is configured and the client has an email
// address, mailed to the client.
type Consumer struct {
	URL        string
	Queue      string
	LogPath    string
	MaxBackoff time.Duration

	Contacts ContactLookup // optional
	Mailer   Mailer        // optional
	Log      *logrus.Logger

	mu sync.Mutex // serializes appends to LogPath
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures are retried with exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	maxBackoff := c.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.WithError(err).Warnf("notify-consumer: dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.WithError(err).Warn("notify-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
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

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		c.Log.WithError(err).Warn("notify-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
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
			if err := c.HandleMessage(ctx, d.Body); err != nil {
				c.Log.WithError(err).Error("notify-consumer: handle message failed")
				_ = d.Nack(false, false) // do not requeue; a bad message would loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage records one notification and mails it.  A mail failure is
// logged and does not fail the message; the log line is the record of
// delivery attempts.
func (c *Consumer) HandleMessage(ctx context.Context, body []byte) error {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationID == 0 || ev.ClientID == 0 {
		return errors.New("event without reservation or client id")
	}

	mailed := c.mail(ctx, ev)
	line := fmt.Sprintf("[%s] %s | event_id=%s | reservation_id=%d | client_id=%d | mailed=%t | message=%q\n",
		ev.OccurredAt, ev.Kind, ev.EventID, ev.ReservationID, ev.ClientID, mailed, ev.Message)
	return c.appendLine(line)
}

func (c *Consumer) mail(ctx context.Context, ev NotificationEvent) bool {
	if c.Mailer == nil || c.Contacts == nil {
		return false
	}
	client, err := c.Contacts.GetByID(ctx, ev.ClientID)
	if err != nil {
		c.Log.WithError(err).WithField("client_id", ev.ClientID).Warn("notify-consumer: client lookup failed")
		return false
	}
	if strings.TrimSpace(client.Email) == "" {
		return false
	}
	subject := fmt.Sprintf("Reserva #%d", ev.ReservationID)
	if err := c.Mailer.Send(ctx, client.Email, subject, renderHTML(client.FullName, ev.Message)); err != nil {
		c.Log.WithError(err).WithField("reservation_id", ev.ReservationID).Warn("notify-consumer: mail failed")
		return false
	}
	return true
}

func (c *Consumer) appendLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.LogPath
	if path == "" {
		path = filepath.Join("logs", "notifications.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
