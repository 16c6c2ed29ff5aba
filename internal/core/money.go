// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed into forms
// and for rendering them in reports. Arithmetic is done on decimal values,
// rounded to CurrencyPlaces only for display and totals.
package core

import (
	"math"
	"math/big"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the precision used for balances, totals and display.
const CurrencyPlaces = 2

// Decimal magnitudes, as powers of ten, outside which a float64 overflows
// to infinity or underflows to zero.
const (
	maxMagnitude = 309
	minMagnitude = -324
)

// ParseNumber parses s as a decimal within float64 range. Values too large to
// be finite return ErrNotFinite; values too small to represent read as zero.
func ParseNumber(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return Finite(d)
}

// Finite bounds d to the float64 range without doing arithmetic on it.
func Finite(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsZero() {
		return decimal.Zero, nil
	}
	digits := len(new(big.Int).Abs(d.Coefficient()).String())
	magnitude := int64(d.Exponent()) + int64(digits)
	switch {
	case magnitude > maxMagnitude:
		return decimal.Zero, ErrNotFinite
	case magnitude < minMagnitude:
		return decimal.Zero, nil
	case magnitude == maxMagnitude && math.IsInf(d.InexactFloat64(), 0):
		return decimal.Zero, ErrNotFinite
	}
	return d, nil
}

// ParseAmount converts a user-entered decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to CurrencyPlaces. Returns ErrInvalidAmount for invalid formats,
// negative values, or amounts that round to zero.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("12.345") -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := ParseNumber(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = RoundCurrency(d)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// RoundCurrency rounds half away from zero to CurrencyPlaces.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// FormatAmount renders d with exactly CurrencyPlaces decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(CurrencyPlaces)
}
