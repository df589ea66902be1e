package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/servicehub/booking-api/internal/domain/currency"
	"github.com/servicehub/booking-api/internal/domain/profile"
	"github.com/servicehub/booking-api/internal/pkg/lock"
	"github.com/servicehub/booking-api/internal/pkg/logger"
	"github.com/servicehub/booking-api/internal/pkg/metrics"
)

// Dispatcher receives status-change events after they are persisted.
type Dispatcher interface {
	Dispatch(ctx context.Context, event BookingStatusChanged) error
}

// Assets controls how stored asset paths are rendered.
type Assets struct {
	BaseURL                 string
	DefaultAvatarPath       string
	DefaultServiceImagePath string
}

// Service coordinates the lifecycle engine with storage, locking and dispatch.
type Service struct {
	repo       Repository
	engine     *Engine
	locker     lock.Locker
	dispatcher Dispatcher
	profiles   profile.Repository
	normalizer *currency.Normalizer
	assets     Assets
}

// NewService creates booking service
func NewService(
	repo Repository,
	engine *Engine,
	locker lock.Locker,
	dispatcher Dispatcher,
	profiles profile.Repository,
	normalizer *currency.Normalizer,
	assets Assets,
) *Service {
	return &Service{
		repo:       repo,
		engine:     engine,
		locker:     locker,
		dispatcher: dispatcher,
		profiles:   profiles,
		normalizer: normalizer,
		assets:     assets,
	}
}

// TransitionRequest is a transition attempt by an authenticated actor.
type TransitionRequest struct {
	BookingID int64
	Action    Action
	ActorRole profile.Role
	ActorID   int64
	Reason    string
}

// TransitionResult is the persisted booking and the event that was emitted.
type TransitionResult struct {
	Booking *Booking
	Event   BookingStatusChanged
}

func lockKey(id int64) string {
	return "booking:lock:" + strconv.FormatInt(id, 10)
}

// Transition applies req under a per-booking lock and persists it with a
// compare-and-swap on the current status.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (result *TransitionResult, err error) {
	log := logger.FromContext(ctx).With().
		Int64("booking_id", req.BookingID).
		Str("action", string(req.Action)).
		Str("actor_role", req.ActorRole.String()).
		Logger()

	defer func() {
		metrics.RecordTransition(string(req.Action), outcome(err))
	}()

	rejected := func(from Status, cause error) error {
		return &TransitionError{
			BookingID: req.BookingID,
			From:      from,
			Action:    req.Action,
			Actor:     req.ActorRole,
			Err:       cause,
		}
	}

	release, err := s.locker.Acquire(ctx, lockKey(req.BookingID))
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		metrics.RecordLockContention()
		return nil, rejected(0, ErrContention)
	case err != nil:
		// The status CAS below still serialises writers.
		log.Warn().Err(err).Msg("Booking lock unavailable, relying on status check")
	default:
		defer func() {
			if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
				log.Warn().Err(relErr).Msg("Failed to release booking lock")
			}
		}()
	}

	b, err := s.repo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !b.IsParty(req.ActorRole, req.ActorID) {
		return nil, rejected(b.Status, ErrUnauthorized)
	}

	tr, err := s.engine.Apply(*b, Command{Action: req.Action, ActorRole: req.ActorRole, Reason: req.Reason})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, b.ID, tr.From, tr.To, tr.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrStatusChanged):
			current := tr.From
			if fresh, getErr := s.repo.GetByID(ctx, b.ID); getErr == nil {
				current = fresh.Status
			}
			return nil, rejected(current, fmt.Errorf("%w: %w", ErrIllegalTransition, err))
		case errors.Is(err, ErrContention):
			metrics.RecordLockContention()
			return nil, rejected(tr.From, err)
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	if dispatchErr := s.dispatcher.Dispatch(ctx, tr.Event); dispatchErr != nil {
		metrics.RecordDispatch("failed")
		log.Error().Err(dispatchErr).Str("event_id", tr.Event.EventID.String()).Msg("Failed to dispatch booking event")
	} else {
		metrics.RecordDispatch("ok")
	}

	log.Info().
		Str("from", tr.From.Name()).
		Str("to", tr.To.Name()).
		Msg("Booking status changed")

	return &TransitionResult{Booking: updated, Event: tr.Event}, nil
}

// AvailableActions is what viewer may do to b right now.
func (s *Service) AvailableActions(b *Booking, viewer profile.Viewer) []Action {
	if !b.IsParty(viewer.Role, viewer.UserID) {
		return nil
	}
	return s.engine.AvailableActions(b.Status, viewer.Role)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrContention):
		return "contention"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrMissingReason):
		return "missing_reason"
	case errors.Is(err, ErrUnknownStatus):
		return "unknown_status"
	case errors.Is(err, ErrBookingNotFound):
		return "not_found"
	}
	return "error"
}
