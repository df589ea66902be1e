package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository reads counterpart profiles.
type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
}

type pgRepository struct{ db *sqlx.DB }

// NewRepository creates profile repository
func NewRepository(db *sqlx.DB) Repository { return &pgRepository{db: db} }

func (r *pgRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := `
		SELECT id,
		       COALESCE(name, '') AS name,
		       COALESCE(mobileno, '') AS phone,
		       COALESCE(profile_img, '') AS avatar_path
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var p Profile
	if err := r.db.GetContext(ctx, &p, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}
