package currency

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository reads the currency reference table.
type Repository interface {
	ListActive(ctx context.Context) ([]Currency, error)
}

type pgRepository struct {
	db *sqlx.DB
}

// NewRepository creates currency repository
func NewRepository(db *sqlx.DB) Repository {
	return &pgRepository{db: db}
}

func (r *pgRepository) ListActive(ctx context.Context) ([]Currency, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := `
		SELECT code, rate_to_base, symbol, COALESCE(minor_units, 2) AS minor_units, is_active
		FROM currencies
		WHERE is_active = TRUE
		ORDER BY code ASC`

	var currencies []Currency
	if err := r.db.SelectContext(ctx, &currencies, q); err != nil {
		return nil, err
	}
	return currencies, nil
}
