package currency

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	maxAmountScale  = 8
	maxAmountDigits = 15
)

// Lookuper resolves a code to its catalog row.
type Lookuper interface {
	Lookup(code string) (Currency, error)
}

// Normalizer converts stored amounts into a viewer's currency.
type Normalizer struct {
	catalog Lookuper
}

// NewNormalizer creates a normalizer over catalog.
func NewNormalizer(catalog Lookuper) *Normalizer {
	return &Normalizer{catalog: catalog}
}

// Normalize converts amount from source to target currency, rounded half-even
// to the target's minor units. Identical codes return amount untouched.
func (n *Normalizer) Normalize(amount decimal.Decimal, source, target string) (decimal.Decimal, error) {
	if NormalizeCode(source) == NormalizeCode(target) {
		if _, err := n.catalog.Lookup(target); err != nil {
			return decimal.Zero, err
		}
		return amount, nil
	}

	src, err := n.catalog.Lookup(source)
	if err != nil {
		return decimal.Zero, err
	}
	dst, err := n.catalog.Lookup(target)
	if err != nil {
		return decimal.Zero, err
	}

	return divRoundBank(amount.Mul(dst.RateToBase), src.RateToBase, dst.MinorUnits), nil
}

// CheckAmount rejects amounts with more than maxAmountScale fractional digits
// or more than maxAmountDigits integer digits. Only the digit count and
// exponent are inspected, so oversized inputs are never expanded.
func CheckAmount(amount decimal.Decimal) error {
	exp := int64(amount.Exponent())
	if exp < -maxAmountScale || int64(amount.NumDigits())+exp > maxAmountDigits {
		return ErrInvalidAmount
	}
	return nil
}

// divRoundBank computes num/den exactly and rounds half-even to places.
func divRoundBank(num, den decimal.Decimal, places int32) decimal.Decimal {
	q := new(big.Rat).Quo(num.Rat(), den.Rat())

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	n := new(big.Int).Mul(q.Num(), scale)
	d := q.Denom()

	quo, rem := new(big.Int).QuoRem(n, d, new(big.Int))
	twice := new(big.Int).Lsh(new(big.Int).Abs(rem), 1)
	cmp := twice.Cmp(d)
	if cmp > 0 || (cmp == 0 && new(big.Int).Abs(quo).Bit(0) == 1) {
		if n.Sign() < 0 {
			quo.Sub(quo, big.NewInt(1))
		} else {
			quo.Add(quo, big.NewInt(1))
		}
	}
	return decimal.NewFromBigInt(quo, -places)
}

// Format renders amount with the currency symbol at the currency's precision.
func (n *Normalizer) Format(amount decimal.Decimal, code string) (string, error) {
	cur, err := n.catalog.Lookup(code)
	if err != nil {
		return "", err
	}
	return cur.Symbol + amount.StringFixedBank(cur.MinorUnits), nil
}

// Precision returns the minor-unit digits for code.
func (n *Normalizer) Precision(code string) (int32, error) {
	cur, err := n.catalog.Lookup(code)
	if err != nil {
		return 0, err
	}
	return cur.MinorUnits, nil
}
