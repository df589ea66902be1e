package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// CurrencySettings resolves the display currency for a viewer.
// Providers and users read their own preference; anyone without one falls
// back to the system setting and then to the configured default.
type CurrencySettings struct {
	db       *sqlx.DB
	fallback string
}

// NewCurrencySettings creates the settings provider. fallback is used when the
// system_settings table has no currency row.
func NewCurrencySettings(db *sqlx.DB, fallback string) *CurrencySettings {
	return &CurrencySettings{db: db, fallback: strings.ToUpper(fallback)}
}

// ResolveViewer builds the viewer context for role and id.
func (s *CurrencySettings) ResolveViewer(ctx context.Context, role Role, id int64) (Viewer, error) {
	viewer := Viewer{Role: role, UserID: id}
	if role == RoleAnonymous || id == 0 {
		viewer.Role = RoleAnonymous
		viewer.UserID = 0
	}

	var code string
	var err error
	switch viewer.Role {
	case RoleProvider:
		code, err = s.preference(ctx, `SELECT COALESCE(currency_code, '') FROM providers WHERE id = $1`, id)
	case RoleUser:
		code, err = s.preference(ctx, `SELECT COALESCE(currency_code, '') FROM users WHERE id = $1`, id)
	}
	if err != nil {
		return Viewer{}, fmt.Errorf("resolve %s currency: %w", viewer.Role, err)
	}

	if code == "" {
		code, err = s.SystemCurrency(ctx)
		if err != nil {
			return Viewer{}, err
		}
	}

	viewer.CurrencyCode = strings.ToUpper(strings.TrimSpace(code))
	return viewer, nil
}

// SystemCurrency returns the marketplace default currency.
func (s *CurrencySettings) SystemCurrency(ctx context.Context) (string, error) {
	code, err := s.preference(ctx, `SELECT value FROM system_settings WHERE key = 'currency'`)
	if err != nil {
		return "", fmt.Errorf("resolve system currency: %w", err)
	}
	if code == "" {
		return s.fallback, nil
	}
	return code, nil
}

// preference returns "" when the row is missing.
func (s *CurrencySettings) preference(ctx context.Context, q string, args ...interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var code string
	if err := s.db.GetContext(ctx, &code, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(code), nil
}
