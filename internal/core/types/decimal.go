// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity represents a stock quantity with full precision.
// Unlike money, quantities are frequently multiplied by unit costs,
// so they share the decimal representation (maps to NUMERIC in Postgres).
type Quantity = decimal.Decimal

// NewFromString creates a decimal value from a string.
// This is the preferred constructor for exact values.
func NewFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustDecimal creates a decimal value from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewFromInt creates a decimal from an integer.
func NewFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// NewFromFloat creates a decimal from a float.
// WARNING: prefer NewFromString for values that must round-trip exactly.
func NewFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Zero returns the zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// Ptr returns a pointer to d. Nullable aggregates (averages, days-on-hand)
// use *decimal.Decimal where nil means "undefined", never zero.
func Ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// PtrEqual compares two nullable decimals: both nil, or both set and equal.
func PtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// SafeDiv divides a by b, returning nil when b is zero.
func SafeDiv(a, b decimal.Decimal) *decimal.Decimal {
	if b.IsZero() {
		return nil
	}
	q := a.Div(b)
	return &q
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
