package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

const defaultMinorUnits = 2

// Currency is a row of the reference currency table.
// RateToBase is how many units of this currency buy one unit of the base currency.
type Currency struct {
	Code       string          `db:"code"`
	RateToBase decimal.Decimal `db:"rate_to_base"`
	Symbol     string          `db:"symbol"`
	MinorUnits int32           `db:"minor_units"`
	IsActive   bool            `db:"is_active"`
}

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
