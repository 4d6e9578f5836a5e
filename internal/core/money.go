// Package core holds the financial domain: exact-arithmetic money values,
// calendar window selection, and the report builders composed from them.
//
// This file contains the Money value type. Amounts are held as signed minor
// units (cents) to avoid floating-point drift; the ledger source delivers
// them as decimal strings with two fractional digits.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an immutable currency amount in minor units.
type Money struct {
	Currency string
	Cents    int64
}

// FromCents constructs a Money directly from a minor-unit count.
func FromCents(currency string, cents int64) Money {
	return Money{Currency: currency, Cents: cents}
}

// ParseAmount converts a ledger decimal string (e.g. "12.34", "-0.50") into
// minor units. Every rune except digits is stripped, so "12.34" reads as
// 1234 cents; a single leading '-' keeps the sign. Returns ErrNoAmount when
// no digits are present.
func ParseAmount(currency, text string) (Money, error) {
	text = strings.TrimSpace(text)
	neg := strings.HasPrefix(text, "-")

	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return Money{}, fmt.Errorf("parse amount %q: %w", text, ErrNoAmount)
	}
	cents, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", text, ErrNoAmount)
	}
	if neg {
		cents = -cents
	}
	return Money{Currency: currency, Cents: cents}, nil
}

// Negate returns the amount with its sign flipped.
func (m Money) Negate() Money {
	return Money{Currency: m.Currency, Cents: -m.Cents}
}

// Abs returns the non-negative magnitude.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Negate()
	}
	return m
}

// Sign returns -1, 0 or 1. This is the only permitted comparison that
// ignores currency: "is this a deposit or a withdrawal".
func (m Money) Sign() int {
	switch {
	case m.Cents < 0:
		return -1
	case m.Cents > 0:
		return 1
	default:
		return 0
	}
}

// Cmp orders two amounts of the same currency. Comparing across currencies
// is a caller bug and fails with ErrCurrencyMismatch rather than coercing.
func (m Money) Cmp(other Money) (int, error) {
	if m.Currency != other.Currency {
		return 0, fmt.Errorf("compare %s with %s: %w", m.Currency, other.Currency, ErrCurrencyMismatch)
	}
	switch {
	case m.Cents < other.Cents:
		return -1, nil
	case m.Cents > other.Cents:
		return 1, nil
	default:
		return 0, nil
	}
}

// Add returns m+other, failing on mixed currencies.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("add %s to %s: %w", other.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Currency: m.Currency, Cents: m.Cents + other.Cents}, nil
}

// Sum folds a same-currency list. The fallback currency names the zero value
// for an empty list; a mixed list fails with ErrCurrencyMismatch.
func Sum(amounts []Money, fallback string) (Money, error) {
	total := Money{Currency: fallback}
	for _, a := range amounts {
		var err error
		total, err = total.Add(a)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// currencySymbols maps known ISO codes to their display symbol. Unknown
// codes render as a "CODE " prefix instead.
var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

// String renders the amount with two-digit minor part, e.g. "€-12.05".
func (m Money) String() string {
	prefix, ok := currencySymbols[m.Currency]
	if !ok {
		prefix = m.Currency + " "
	}
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", prefix, sign, cents/100, cents%100)
}
