package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servicehub/booking-api/internal/domain/profile"
)

// Action is a transition request verb.
type Action string

const (
	ActionAccept            Action = "accept"
	ActionCancel            Action = "cancel"
	ActionRequestCompletion Action = "request_completion"
	ActionUserConfirm       Action = "user_confirm"
	ActionUserReject        Action = "user_reject"
)

// actionOrder fixes the order actions are offered in.
var actionOrder = []Action{
	ActionAccept,
	ActionRequestCompletion,
	ActionCancel,
	ActionUserConfirm,
	ActionUserReject,
}

type edge struct {
	from   Status
	action Action
}

type rule struct {
	to          Status
	actor       profile.Role
	needsReason bool
}

// transitions is the whole legal graph. Anything absent is illegal.
var transitions = map[edge]rule{
	{StatusPending, ActionAccept}:                {StatusInProgress, profile.RoleProvider, false},
	{StatusPending, ActionCancel}:                {StatusCancelledByProvider, profile.RoleProvider, true},
	{StatusInProgress, ActionRequestCompletion}:  {StatusCompleteRequested, profile.RoleProvider, false},
	{StatusInProgress, ActionCancel}:             {StatusCancelledByProvider, profile.RoleProvider, true},
	{StatusCompleteRequested, ActionUserConfirm}: {StatusCompletedAccepted, profile.RoleUser, false},
	{StatusCompleteRequested, ActionUserReject}:  {StatusRejectedByUser, profile.RoleUser, true},
}

// Command is a requested transition.
type Command struct {
	Action    Action
	ActorRole profile.Role
	Reason    string
}

// Transition is the result of a legal command. Reason is nil unless the
// target status requires one.
type Transition struct {
	From   Status
	To     Status
	Reason *string
	Event  BookingStatusChanged
}

// Engine evaluates commands against the transition table. It performs no I/O.
type Engine struct {
	now   func() time.Time
	newID func() uuid.UUID
}

// NewEngine creates engine
func NewEngine() *Engine {
	return &Engine{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}

// Apply checks cmd against b's current status and returns the transition.
// Checks run in order: unknown status, illegal edge, wrong actor, missing reason.
func (e *Engine) Apply(b Booking, cmd Command) (Transition, error) {
	fail := func(err error) (Transition, error) {
		return Transition{}, &TransitionError{
			BookingID: b.ID,
			From:      b.Status,
			Action:    cmd.Action,
			Actor:     cmd.ActorRole,
			Err:       err,
		}
	}

	if !b.Status.Valid() {
		return fail(ErrUnknownStatus)
	}
	r, ok := transitions[edge{b.Status, cmd.Action}]
	if !ok {
		return fail(ErrIllegalTransition)
	}
	if cmd.ActorRole != r.actor {
		return fail(ErrUnauthorized)
	}

	var reason *string
	if r.needsReason {
		trimmed := strings.TrimSpace(cmd.Reason)
		if trimmed == "" {
			return fail(ErrMissingReason)
		}
		reason = &trimmed
	}

	return Transition{
		From:   b.Status,
		To:     r.to,
		Reason: reason,
		Event: BookingStatusChanged{
			EventID:    e.newID(),
			BookingID:  b.ID,
			ProviderID: b.ProviderID,
			UserID:     b.UserID,
			From:       b.Status,
			To:         r.to,
			Action:     cmd.Action,
			ActorRole:  cmd.ActorRole,
			Reason:     reason,
			OccurredAt: e.now(),
		},
	}, nil
}

// AvailableActions lists what role may do from s.
func (e *Engine) AvailableActions(s Status, role profile.Role) []Action {
	var out []Action
	for _, a := range actionOrder {
		if r, ok := transitions[edge{s, a}]; ok && r.actor == role {
			out = append(out, a)
		}
	}
	return out
}

// RequiresReason reports whether action from s needs a reason.
func (e *Engine) RequiresReason(s Status, action Action) bool {
	return transitions[edge{s, action}].needsReason
}
