// Package money provides an exact fixed-point monetary value object.
//
// Amounts are stored as an int64 count of minor units (cents). The
// shopspring/decimal library is used at the boundary so that values
// parsed from request payloads or database columns never pass through
// binary floating point.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by every amount.
const Scale = 2

var (
	// ErrPrecision is returned when an amount carries more fractional
	// digits than Scale allows.
	ErrPrecision = errors.New("amount has more decimal places than the ledger scale")

	// ErrOverflow is returned when an amount or an arithmetic result
	// cannot be represented in minor units.
	ErrOverflow = errors.New("amount exceeds maximum representable value")

	// ErrMalformed is returned when an amount string cannot be parsed.
	ErrMalformed = errors.New("malformed amount")
)

// Money is an immutable monetary value at a fixed scale.
// The zero value is zero money and is ready to use.
type Money struct {
	cents int64
}

// FromMinorUnits builds a Money from a raw minor-unit count. Used for
// hydration from a data store, where the value was validated on the way in.
func FromMinorUnits(cents int64) Money {
	return Money{cents: cents}
}

// Parse converts a decimal string such as "70.00" into Money.
// The string must not carry more than Scale fractional digits.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal value into Money, rejecting values that
// would lose precision or overflow the minor-unit representation.
func FromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Shift(Scale)
	if !shifted.IsInteger() {
		return Money{}, ErrPrecision
	}
	bi := shifted.BigInt()
	if !bi.IsInt64() {
		return Money{}, ErrOverflow
	}
	return Money{cents: bi.Int64()}, nil
}

// MinorUnits returns the amount as a count of minor units.
func (m Money) MinorUnits() int64 { return m.cents }

// Decimal returns the amount as an exact decimal at the ledger scale.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -Scale)
}

// Add returns m + other, failing on int64 overflow.
func (m Money) Add(other Money) (Money, error) {
	sum := m.cents + other.cents
	if (other.cents > 0 && sum < m.cents) || (other.cents < 0 && sum > m.cents) {
		return Money{}, ErrOverflow
	}
	return Money{cents: sum}, nil
}

// Sub returns m - other, failing on int64 overflow.
func (m Money) Sub(other Money) (Money, error) {
	if other.cents == math.MinInt64 {
		return Money{}, ErrOverflow
	}
	return m.Add(Money{cents: -other.cents})
}

// Cmp compares m against other: -1 if less, 0 if equal, 1 if greater.
func (m Money) Cmp(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	default:
		return 0
	}
}

// Equal reports whether both amounts are identical.
func (m Money) Equal(other Money) bool { return m.cents == other.cents }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.cents > 0 }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.cents == 0 }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.cents < 0 }

// String renders the amount at the ledger scale, e.g. "70.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(Scale)
}
