package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer appends every BookingEvent from the queue to a log file, one
// line per event.
type Consumer struct {
	URL     string
	Queue   string
	LogPath string
}

func NewConsumer(url, queue, logPath string) *Consumer {
	return &Consumer{URL: url, Queue: queue, LogPath: logPath}
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial and
// channel failures are retried with exponential backoff capped at 30s; a
// message that cannot be handled is rejected without requeue so the loop
// keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handleMessage(d.Body); err != nil {
			log.Printf("booking-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handleMessage(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single human-friendly log line.
func FormatLine(ev BookingEvent) string {
	switch ev.Type {
	case EventProfileUpdated:
		return fmt.Sprintf("[%s] Profile updated | user_id=%d | email=%q | photo=%q\n",
			ev.OccurredAt, ev.UserID, ev.Email, ev.ProfilePhoto)
	case EventBookingDeleted:
		return fmt.Sprintf("[%s] Booking deleted | booking_id=%d\n", ev.OccurredAt, ev.BookingID)
	}
	if ev.Booking == nil {
		return fmt.Sprintf("[%s] %s | booking_id=%d\n", ev.OccurredAt, ev.Type, ev.BookingID)
	}
	b := ev.Booking
	return fmt.Sprintf("[%s] %s | booking_id=%d | guest=\"%s %s\" | total=%d | deposit=%t | stay=%s..%s | needs=%q\n",
		ev.OccurredAt, ev.Type, b.ID, b.Firstname, b.Lastname, b.TotalPrice, b.DepositPaid, b.CheckIn, b.CheckOut, b.AdditionalNeeds)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
