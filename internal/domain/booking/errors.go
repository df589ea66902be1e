package booking

import (
	"errors"
	"fmt"

	"github.com/servicehub/booking-api/internal/domain/profile"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrUnknownStatus     = errors.New("unknown booking status")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrMissingReason     = errors.New("reason is required for this transition")
	ErrUnauthorized      = errors.New("actor is not allowed to perform this transition")
	ErrInvalidFilter     = errors.New("status cannot be used as a filter")

	// ErrContention means the booking was locked by another request. Safe to retry.
	ErrContention = errors.New("booking is busy, retry later")

	// ErrStatusChanged is returned by storage when the expected status no longer holds.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

// TransitionError carries the context of a rejected transition.
type TransitionError struct {
	BookingID int64
	From      Status
	Action    Action
	Actor     profile.Role
	Err       error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking %d: %s by %s from %s: %v", e.BookingID, e.Action, e.Actor, e.From, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// IsRetryable reports whether err may be retried automatically.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
