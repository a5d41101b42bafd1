package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotdesk/internal/model"
)

// EventStore persists audit records.  Create reports false for an event
// that was already stored.
type EventStore interface {
	Create(ctx context.Context, ev *model.BookingEvent) (bool, error)
}

// StartBookingConsumer connects to RabbitMQ, declares the booking.created
// queue and writes every message to store.  It reconnects with exponential
// backoff and returns only when ctx is cancelled.  A message that cannot
// be decoded is rejected without requeue so the consumer keeps going.
func StartBookingConsumer(ctx context.Context, url string, store EventStore, log zerolog.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("booking-consumer: failed to dial broker")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, store, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("booking-consumer: consume loop ended; reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, store EventStore, log zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("booking-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(BookingCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(BookingCreatedQueue, "", false, false, false, false, nil)
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
			if err := handleMessage(ctx, store, log, d.Body); err != nil {
				log.Error().Err(err).Msg("booking-consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(ctx context.Context, store EventStore, log zerolog.Logger, body []byte) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	rec, err := ev.ToModel()
	if err != nil {
		return err
	}
	inserted, err := store.Create(ctx, &rec)
	if err != nil {
		return fmt.Errorf("store event: %w", err)
	}
	log.Info().
		Str("event_id", rec.EventID).
		Uint64("booking_id", rec.BookingID).
		Str("desk", rec.DeskName).
		Str("name", rec.Name).
		Time("starts_at", rec.Start).
		Time("ends_at", rec.End).
		Bool("duplicate", !inserted).
		Msg("booking recorded")
	return nil
}
