package currency

import "errors"

var (
	// ErrUnknownCurrency is returned when a code is not in the catalog
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrInvalidAmount is returned for unparsable or out-of-range amounts
	ErrInvalidAmount = errors.New("invalid amount")
)
