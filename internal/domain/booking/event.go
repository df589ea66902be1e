package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/servicehub/booking-api/internal/domain/profile"
)

// BookingStatusChanged is emitted once per applied transition.
type BookingStatusChanged struct {
	EventID    uuid.UUID    `json:"event_id"`
	BookingID  int64        `json:"booking_id"`
	ProviderID int64        `json:"provider_id"`
	UserID     int64        `json:"user_id"`
	From       Status       `json:"from"`
	To         Status       `json:"to"`
	Action     Action       `json:"action"`
	ActorRole  profile.Role `json:"actor_role"`
	Reason     *string      `json:"reason,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
