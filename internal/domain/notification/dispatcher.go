package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/servicehub/booking-api/internal/domain/booking"
	"github.com/servicehub/booking-api/internal/pkg/logger"
)

const (
	// QueueKey is the list consumers BRPOP booking events from.
	QueueKey = "booking:events"
	// LiveChannel carries the same events for connected clients (chat unlock, badges).
	LiveChannel = "booking:events:live"
)

// RedisDispatcher hands booking events to downstream consumers through Redis.
// Delivery and retries belong to the consumers; the queue gives them at-least-once.
type RedisDispatcher struct {
	client *redis.Client
}

// NewRedisDispatcher creates a Redis-backed dispatcher.
func NewRedisDispatcher(client *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{client: client}
}

// Dispatch enqueues the event and publishes it on the live channel.
func (d *RedisDispatcher) Dispatch(ctx context.Context, event booking.BookingStatusChanged) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}
	payload := string(raw)

	if err := d.client.LPush(ctx, QueueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue booking event: %w", err)
	}

	// Live delivery is best effort; the queued copy is authoritative.
	if err := d.client.Publish(ctx, LiveChannel, payload).Err(); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("event_id", event.EventID.String()).
			Msg("Failed to publish live booking event")
	}

	logger.FromContext(ctx).Debug().
		Str("event_id", event.EventID.String()).
		Int64("booking_id", event.BookingID).
		Str("to", event.To.Name()).
		Msg("Booking event dispatched")
	return nil
}

// LogDispatcher only logs events. Used when Redis is not configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(ctx context.Context, event booking.BookingStatusChanged) error {
	logger.FromContext(ctx).Info().
		Str("event_id", event.EventID.String()).
		Int64("booking_id", event.BookingID).
		Str("from", event.From.Name()).
		Str("to", event.To.Name()).
		Str("action", string(event.Action)).
		Str("actor_role", event.ActorRole.String()).
		Msg("Booking status changed")
	return nil
}
