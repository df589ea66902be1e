package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/servicehub/booking-api/internal/domain/profile"
	"github.com/servicehub/booking-api/internal/pkg/lock"
)

func TestTransitionAcceptsAndDispatches(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusPending))
	disp := &mockDispatcher{}
	disp.On("Dispatch", mock.Anything, mock.MatchedBy(func(e BookingStatusChanged) bool {
		return e.BookingID == 1 && e.From == StatusPending && e.To == StatusInProgress && e.ActorRole == profile.RoleProvider
	})).Return(nil).Once()

	svc := newTestService(repo, lock.Noop{}, disp, &memProfiles{})
	res, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, res.Booking.Status)
	assert.Equal(t, StatusInProgress, repo.status(1))
	disp.AssertExpectations(t)
}

func TestTransitionCancelStoresReason(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusPending))
	disp := &mockDispatcher{}
	disp.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(repo, lock.Noop{}, disp, &memProfiles{})

	_, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionCancel, ActorRole: profile.RoleProvider, ActorID: 10,
	})
	assert.ErrorIs(t, err, ErrMissingReason)
	assert.Equal(t, StatusPending, repo.status(1))
	disp.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)

	res, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionCancel, ActorRole: profile.RoleProvider, ActorID: 10, Reason: "customer unavailable",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelledByProvider, res.Booking.Status)
	require.NotNil(t, res.Booking.ReasonText())
	assert.Equal(t, "customer unavailable", *res.Booking.ReasonText())
	require.NotNil(t, res.Event.Reason)
}

func TestTransitionRejectsNonParty(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusPending))
	svc := newTestService(repo, lock.Noop{}, &mockDispatcher{}, &memProfiles{})

	_, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 11,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleAnonymous,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, StatusPending, repo.status(1))
}

func TestTransitionUserCannotCancelInProgress(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusInProgress))
	svc := newTestService(repo, lock.Noop{}, &mockDispatcher{}, &memProfiles{})

	_, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionCancel, ActorRole: profile.RoleUser, ActorID: 20, Reason: "changed my mind",
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTransitionNotFound(t *testing.T) {
	svc := newTestService(newMemRepo(), lock.Noop{}, &mockDispatcher{}, &memProfiles{})

	_, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 99, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 10,
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestTransitionTerminalStatusesAreFinal(t *testing.T) {
	for _, s := range []Status{StatusRejectedByUser, StatusCompletedAccepted, StatusCancelledByProvider} {
		repo := newMemRepo(testBooking(1, s))
		svc := newTestService(repo, lock.Noop{}, &mockDispatcher{}, &memProfiles{})

		for _, req := range []TransitionRequest{
			{BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 10},
			{BookingID: 1, Action: ActionCancel, ActorRole: profile.RoleProvider, ActorID: 10, Reason: "x"},
			{BookingID: 1, Action: ActionRequestCompletion, ActorRole: profile.RoleProvider, ActorID: 10},
			{BookingID: 1, Action: ActionUserConfirm, ActorRole: profile.RoleUser, ActorID: 20},
			{BookingID: 1, Action: ActionUserReject, ActorRole: profile.RoleUser, ActorID: 20, Reason: "x"},
		} {
			_, err := svc.Transition(context.Background(), req)
			assert.ErrorIs(t, err, ErrIllegalTransition, "%s %s", s.Name(), req.Action)
		}
		assert.Equal(t, s, repo.status(1))
	}
}

func TestTransitionLockContention(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusPending))
	locker := heldLocker{held: map[string]bool{"booking:lock:1": true}}
	svc := newTestService(repo, locker, &mockDispatcher{}, &memProfiles{})

	_, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 10,
	})
	assert.ErrorIs(t, err, ErrContention)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, StatusPending, repo.status(1))
}

func TestTransitionProceedsWhenLockBackendFails(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusPending))
	disp := &mockDispatcher{}
	disp.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(repo, heldLocker{err: errRedisDown}, disp, &memProfiles{})

	_, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, repo.status(1))
}

func TestTransitionDispatchFailureDoesNotRollBack(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusPending))
	disp := &mockDispatcher{}
	disp.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("queue full"))
	svc := newTestService(repo, lock.Noop{}, disp, &memProfiles{})

	res, err := svc.Transition(context.Background(), TransitionRequest{
		BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, res.Booking.Status)
}

func TestConcurrentAcceptHasExactlyOneWinner(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusPending))

	// Both requests read Pending before either writes.
	var arrived sync.WaitGroup
	arrived.Add(2)
	var gets atomic.Int32
	repo.afterGet = func() {
		if gets.Add(1) <= 2 {
			arrived.Done()
			arrived.Wait()
		}
	}

	disp := &mockDispatcher{}
	disp.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(repo, lock.Noop{}, disp, &memProfiles{})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transition(context.Background(), TransitionRequest{
				BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 10,
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrIllegalTransition)
		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, StatusInProgress, te.From)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, StatusInProgress, repo.status(1))
	disp.AssertNumberOfCalls(t, "Dispatch", 1)
}

func TestConcurrentTransitionsUnderLock(t *testing.T) {
	repo := newMemRepo(testBooking(1, StatusPending))
	disp := &mockDispatcher{}
	disp.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(repo, &mutexLocker{}, disp, &memProfiles{})

	const attempts = 8
	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transition(context.Background(), TransitionRequest{
				BookingID: 1, Action: ActionAccept, ActorRole: profile.RoleProvider, ActorID: 10,
			})
			if err == nil {
				successes.Add(1)
				return
			}
			assert.True(t, errors.Is(err, ErrIllegalTransition) || errors.Is(err, ErrContention), "%v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, StatusInProgress, repo.status(1))
}

// mutexLocker fails fast when the key is held, like a zero-wait Redis lock.
type mutexLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *mutexLocker) Acquire(_ context.Context, key string) (lock.Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, lock.ErrNotAcquired
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
		return nil
	}, nil
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "contention", outcome(&TransitionError{Err: ErrContention}))
	assert.Equal(t, "illegal", outcome(&TransitionError{Err: ErrIllegalTransition}))
	assert.Equal(t, "not_found", outcome(ErrBookingNotFound))
	assert.Equal(t, "error", outcome(errors.New("x")))
}
