// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents so sums never drift; decimal parsing and
// percentage scaling go through shopspring/decimal.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// Cents builds a Money from a cent count.
func Cents(c int64) Money { return Money{Cents: c} }

// ParseSignedCents converts a decimal string to signed cents with half-up
// rounding. Currency symbols, thousands separators and surrounding
// whitespace are stripped first, so "$1,234.567" yields 123457.
//
// Examples:
//
//	ParseSignedCents("12.34")   -> 1234, nil
//	ParseSignedCents("-$45.00") -> -4500, nil
//	ParseSignedCents("abc")     -> 0, ErrInvalidAmount
func ParseSignedCents(s string) (int64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return cents.IntPart(), nil
}

const maxCents = (1<<63 - 1) / 100

// ParseAmount parses a non-negative amount as entered by a user.
func ParseAmount(s string) (Money, error) {
	cents, err := ParseSignedCents(s)
	if err != nil {
		return Money{}, err
	}
	if cents < 0 {
		return Money{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}
	return Money{Cents: cents}, nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// Dollars returns the value as a float64 for display and ratio math.
// Use cents for sums.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// MulDiv returns m*num/den rounded half away from zero to the cent.
// A zero den yields zero.
func (m Money) MulDiv(num, den int64) Money {
	if den == 0 {
		return Money{}
	}
	r := decimal.NewFromInt(m.Cents).Mul(decimal.NewFromInt(num)).Div(decimal.NewFromInt(den))
	return Money{Cents: r.Round(0).IntPart()}
}

// Percent returns p percent of m.
func (m Money) Percent(p float64) Money {
	r := decimal.NewFromInt(m.Cents).Mul(decimal.NewFromFloat(p)).Div(decimal.NewFromInt(100))
	return Money{Cents: r.Round(0).IntPart()}
}

// Ratio returns m/o*100, or 0 when o is zero.
func (m Money) Ratio(o Money) float64 {
	if o.Cents == 0 {
		return 0
	}
	return float64(m.Cents) / float64(o.Cents) * 100
}

// String renders the amount as "$12.34" ("-$12.34" when negative).
func (m Money) String() string {
	if m.Cents < 0 {
		return "-$" + Money{Cents: -m.Cents}.decimal().StringFixed(2)
	}
	return "$" + m.decimal().StringFixed(2)
}

func (m Money) decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// MarshalJSON encodes the amount as a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if string(data) == "null" {
		*m = Money{}
		return nil
	}
	cents, err := ParseSignedCents(string(data))
	if err != nil {
		return err
	}
	*m = Money{Cents: cents}
	return nil
}
