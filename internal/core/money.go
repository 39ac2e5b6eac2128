// Package core holds the domain model for the transaction ledger and
// budget engine.
//
// This file contains helpers for parsing and converting monetary amounts.
// Amounts are decimal values with at most two fractional digits; the
// storage layer persists them as integer cents so SQL aggregation stays
// exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a validated positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for non-numeric input, zero or negative
// values, and amounts with more than two decimal places.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> 0, ErrInvalidAmount
//	ParseAmount("-5.00") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount enforces the ledger's positivity invariant: amounts are
// strictly positive with at most two decimal places.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	if !CentExact(d) {
		return ErrInvalidAmount
	}
	return nil
}

// ParseLimit converts a decimal string to a validated non-negative
// monthly limit. Unlike ParseAmount, zero is allowed.
func ParseLimit(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrNegativeLimit
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNegativeLimit
	}
	if d.IsNegative() || !CentExact(d) {
		return decimal.Zero, ErrNegativeLimit
	}
	return d, nil
}

// CentExact reports whether d has no more than two decimal places.
func CentExact(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Truncate(0))
}

// Cents converts a cent-exact amount to integer cents for storage.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).IntPart()
}

// FromCents converts stored integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
