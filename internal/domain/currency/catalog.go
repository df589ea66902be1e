package currency

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/servicehub/booking-api/internal/pkg/logger"
)

// Catalog resolves currency codes to rates and symbols. Safe for concurrent use.
type Catalog struct {
	repo Repository

	mu     sync.RWMutex
	byCode map[string]Currency
}

// NewCatalog creates an empty catalog backed by repo. Call Load before use.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo, byCode: map[string]Currency{}}
}

// NewStaticCatalog builds a catalog from fixed rows.
func NewStaticCatalog(currencies ...Currency) *Catalog {
	c := &Catalog{}
	c.replace(currencies)
	return c
}

// Load (re)reads the active currencies and atomically swaps them in.
func (c *Catalog) Load(ctx context.Context) error {
	rows, err := c.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load currencies: %w", err)
	}
	n := c.replace(rows)
	logger.FromContext(ctx).Info().Int("currencies", n).Msg("Currency catalog loaded")
	return nil
}

func (c *Catalog) replace(rows []Currency) int {
	next := make(map[string]Currency, len(rows))
	for _, row := range rows {
		row.Code = NormalizeCode(row.Code)
		if row.Code == "" || !row.RateToBase.IsPositive() {
			log.Warn().Str("code", row.Code).Str("rate", row.RateToBase.String()).Msg("Skipping currency with invalid rate")
			continue
		}
		if row.MinorUnits < 0 {
			row.MinorUnits = defaultMinorUnits
		}
		next[row.Code] = row
	}

	c.mu.Lock()
	c.byCode = next
	c.mu.Unlock()
	return len(next)
}

// Lookup returns the catalog row for code.
func (c *Catalog) Lookup(code string) (Currency, error) {
	code = NormalizeCode(code)

	c.mu.RLock()
	cur, ok := c.byCode[code]
	c.mu.RUnlock()

	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return cur, nil
}

// Rate returns rate_to_base for code.
func (c *Catalog) Rate(code string) (decimal.Decimal, error) {
	cur, err := c.Lookup(code)
	if err != nil {
		return decimal.Zero, err
	}
	return cur.RateToBase, nil
}

// Symbol returns the display glyph for code.
func (c *Catalog) Symbol(code string) (string, error) {
	cur, err := c.Lookup(code)
	if err != nil {
		return "", err
	}
	return cur.Symbol, nil
}

// Precision returns the number of minor-unit digits for code.
func (c *Catalog) Precision(code string) (int32, error) {
	cur, err := c.Lookup(code)
	if err != nil {
		return 0, err
	}
	return cur.MinorUnits, nil
}

// List returns all currencies sorted by code.
func (c *Catalog) List() []Currency {
	c.mu.RLock()
	out := make([]Currency, 0, len(c.byCode))
	for _, cur := range c.byCode {
		out = append(out, cur)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
