// Package core provides money parsing and handling utilities.
//
// This file contains the exact decimal types used for amounts, balances and
// holding quantities, and their JSON encoding.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact signed monetary amount in the major unit (reais, not centavos).
// The zero value is 0.
type Money struct {
	d decimal.Decimal
}

// Quantity is an exact, possibly fractional, number of units of an asset.
type Quantity struct {
	d decimal.Decimal
}

// NewMoney builds a Money from a float. Intended for tests and literals;
// request bodies go through UnmarshalJSON which never touches floats.
func NewMoney(v float64) Money {
	return Money{d: decimal.NewFromFloat(v)}
}

// MoneyFromDecimal wraps an existing decimal value.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// ParseMoney parses a decimal string. Both dot (12.34) and comma (12,34)
// separators are accepted; the sign is preserved.
func ParseMoney(s string) (Money, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{d: d}, nil
}

// NewQuantity builds a Quantity from a float.
func NewQuantity(v float64) Quantity {
	return Quantity{d: decimal.NewFromFloat(v)}
}

// ParseQuantity parses a decimal string into a Quantity.
func ParseQuantity(s string) (Quantity, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return Quantity{d: d}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

func (m Money) Decimal() decimal.Decimal { return m.d }
func (m Money) Add(n Money) Money        { return Money{d: m.d.Add(n.d)} }
func (m Money) Sub(n Money) Money        { return Money{d: m.d.Sub(n.d)} }
func (m Money) Neg() Money               { return Money{d: m.d.Neg()} }
func (m Money) Mul(q Quantity) Money     { return Money{d: m.d.Mul(q.d)} }
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }
func (m Money) Equal(n Money) bool       { return m.d.Equal(n.d) }
func (m Money) GreaterThan(n Money) bool { return m.d.GreaterThan(n.d) }
func (m Money) String() string           { return m.d.String() }
func (m Money) Float64() float64         { f, _ := m.d.Float64(); return f }
func (m Money) Round(places int32) Money { return Money{d: m.d.Round(places)} }
func (m Money) MulFloat(f float64) Money { return Money{d: m.d.Mul(decimal.NewFromFloat(f))} }

func (q Quantity) Decimal() decimal.Decimal { return q.d }
func (q Quantity) Add(n Quantity) Quantity  { return Quantity{d: q.d.Add(n.d)} }
func (q Quantity) IsZero() bool             { return q.d.IsZero() }
func (q Quantity) IsPositive() bool         { return q.d.IsPositive() }
func (q Quantity) Equal(n Quantity) bool    { return q.d.Equal(n.d) }
func (q Quantity) String() string           { return q.d.String() }

// DivQuantity divides an amount by a quantity, returning 0 for a zero quantity.
func (m Money) DivQuantity(q Quantity) Money {
	if q.d.IsZero() {
		return Money{}
	}
	return Money{d: m.d.DivRound(q.d, 8)}
}

// Sum adds up a list of amounts.
func Sum(amounts ...Money) Money {
	total := Money{}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON encodes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.d.String()), nil }

// UnmarshalJSON accepts a JSON number, a numeric string, or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := unmarshalDecimal(data)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	m.d = d
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) { return []byte(q.d.String()), nil }

func (q *Quantity) UnmarshalJSON(data []byte) error {
	d, err := unmarshalDecimal(data)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidQuantity, data)
	}
	q.d = d
	return nil
}

func unmarshalDecimal(data []byte) (decimal.Decimal, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return decimal.Zero, nil
	}
	return parseDecimal(string(bytes.Trim(data, `"`)))
}
