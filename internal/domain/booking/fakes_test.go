package booking

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/servicehub/booking-api/internal/domain/currency"
	"github.com/servicehub/booking-api/internal/domain/profile"
	"github.com/servicehub/booking-api/internal/pkg/lock"
)

type memRepo struct {
	mu       sync.Mutex
	rows     map[int64]Booking
	order    []int64
	afterGet func()
}

func newMemRepo(bookings ...Booking) *memRepo {
	r := &memRepo{rows: map[int64]Booking{}}
	for _, b := range bookings {
		r.rows[b.ID] = b
		r.order = append(r.order, b.ID)
	}
	return r
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Booking, error) {
	r.mu.Lock()
	b, ok := r.rows[id]
	r.mu.Unlock()
	if r.afterGet != nil {
		r.afterGet()
	}
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id int64, expected, next Status, reason *string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.rows[id]
	if !ok || b.Status != expected {
		return nil, ErrStatusChanged
	}
	b.Status = next
	b.Reason = sql.NullString{}
	if reason != nil {
		b.Reason = sql.NullString{String: *reason, Valid: true}
	}
	b.UpdatedAt = time.Now()
	r.rows[id] = b
	return &b, nil
}

func (r *memRepo) ListByProvider(_ context.Context, providerID int64, filter *Status) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, id := range r.order {
		b := r.rows[id]
		if b.ProviderID != providerID {
			continue
		}
		if filter != nil && b.Status != *filter {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *memRepo) status(id int64) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id].Status
}

type memProfiles struct {
	profiles map[int64]profile.Profile
	err      error
	calls    atomic.Int32
}

func (p *memProfiles) GetProfile(_ context.Context, userID int64) (*profile.Profile, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	pr, ok := p.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return &pr, nil
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, event BookingStatusChanged) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// heldLocker refuses every key in held.
type heldLocker struct {
	held map[string]bool
	err  error
}

func (l heldLocker) Acquire(_ context.Context, key string) (lock.Release, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.held[key] {
		return nil, lock.ErrNotAcquired
	}
	return func(context.Context) error { return nil }, nil
}

var errRedisDown = errors.New("redis down")

func testNormalizer() *currency.Normalizer {
	return currency.NewNormalizer(currency.NewStaticCatalog(
		currency.Currency{Code: "USD", RateToBase: decimal.RequireFromString("1.0"), Symbol: "$", MinorUnits: 2},
		currency.Currency{Code: "EUR", RateToBase: decimal.RequireFromString("0.9"), Symbol: "€", MinorUnits: 2},
	))
}

func testBooking(id int64, status Status) Booking {
	b := Booking{
		ID:           id,
		ServiceID:    3,
		ServiceTitle: "Deep cleaning",
		ServiceImage: "uploads/services/clean.jpg",
		ProviderID:   10,
		UserID:       20,
		Status:       status,
		Amount:       decimal.RequireFromString("100"),
		CurrencyCode: "USD",
		ServiceDate:  time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		FromTime:     "09:00",
		ToTime:       "11:00",
		Location:     "12 Main St",
	}
	if status.RequiresReason() {
		b.Reason = sql.NullString{String: "stored reason", Valid: true}
	}
	return b
}

func newTestService(repo Repository, locker lock.Locker, dispatcher Dispatcher, profiles profile.Repository) *Service {
	return NewService(repo, NewEngine(), locker, dispatcher, profiles, testNormalizer(), Assets{
		BaseURL:                 "https://cdn.test/",
		DefaultAvatarPath:       "assets/img/user.jpg",
		DefaultServiceImagePath: "assets/img/service.jpg",
	})
}
