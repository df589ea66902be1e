package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

// pgLockNotAvailable is raised when lock_timeout expires.
const pgLockNotAvailable = "55P03"

// Postgres reads a lock_timeout of 0 as "wait forever".
const minLockTimeout = time.Millisecond

// Repository is booking storage.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Booking, error)
	// UpdateStatus moves the booking to next only if it is still in expected.
	UpdateStatus(ctx context.Context, id int64, expected, next Status, reason *string) (*Booking, error)
	ListByProvider(ctx context.Context, providerID int64, filter *Status) ([]Booking, error)
}

type pgRepository struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

// NewRepository creates booking repository. lockTimeout bounds how long an
// update waits on a row lock held by another transaction.
func NewRepository(db *sqlx.DB, lockTimeout time.Duration) Repository {
	if lockTimeout < minLockTimeout {
		lockTimeout = minLockTimeout
	}
	return &pgRepository{db: db, lockTimeout: lockTimeout}
}

const bookingColumns = `
	b.id, b.service_id, COALESCE(s.title, '') AS service_title,
	COALESCE((
		SELECT si.service_image FROM services_image si
		WHERE si.service_id = b.service_id AND si.status = 1
		ORDER BY si.id LIMIT 1
	), '') AS service_image,
	b.provider_id, b.user_id, b.status, b.amount, b.currency_code,
	b.service_date, b.from_time, b.to_time, COALESCE(b.location, '') AS location,
	b.reason, b.created_at, b.updated_at`

func (r *pgRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := `SELECT` + bookingColumns + `
		FROM bookings b
		LEFT JOIN services s ON s.id = b.service_id
		WHERE b.id = $1`

	var b Booking
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *pgRepository) UpdateStatus(ctx context.Context, id int64, expected, next Status, reason *string) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return nil, mapUpdateError(err)
	}

	q := `
		WITH updated AS (
			UPDATE bookings
			SET status = $3, reason = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING *
		)
		SELECT` + strings.ReplaceAll(bookingColumns, "b.", "u.") + `
		FROM updated u
		LEFT JOIN services s ON s.id = u.service_id`

	var b Booking
	if err := tx.GetContext(ctx, &b, q, id, expected, next, reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusChanged
		}
		return nil, mapUpdateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", mapUpdateError(err))
	}
	return &b, nil
}

func (r *pgRepository) ListByProvider(ctx context.Context, providerID int64, filter *Status) ([]Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString(`SELECT` + bookingColumns + `
		FROM bookings b
		LEFT JOIN services s ON s.id = b.service_id
		WHERE b.provider_id = $1`)
	args := []interface{}{providerID}
	if filter != nil {
		sb.WriteString(` AND b.status = $2`)
		args = append(args, *filter)
	}
	sb.WriteString(` ORDER BY b.id ASC`)

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, sb.String(), args...); err != nil {
		return nil, err
	}
	return bookings, nil
}

// mapUpdateError treats a lock wait that outlived lock_timeout or the query
// deadline as contention.
func mapUpdateError(err error) error {
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pqErr) && string(pqErr.Code) == pgLockNotAvailable:
		return fmt.Errorf("%w: %s", ErrContention, pqErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrContention, err)
	}
	return err
}
