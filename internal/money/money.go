// Package money holds the integer minor-unit amount type used for every
// stored and computed value, plus its exact decimal display form.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string cannot be parsed as an amount.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// Cents is a signed amount in minor currency units.
// Positive values are income, negative values are spending.
type Cents int64

// FromCents converts minor units to their exact decimal form.
func FromCents(c Cents) decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// ToCents converts a decimal amount to minor units, rounding half away
// from zero at the second fractional digit. d must fit in Cents; Parse
// rejects input that does not.
func ToCents(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Parse reads an amount such as "12.34", "12,34" or "-5".
//
// Examples:
//
//	Parse("12.34")  -> 1234
//	Parse("-0,5")   -> -50
//	Parse("1.005")  -> 101
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Mul(hundred).Round(0).BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return ToCents(d), nil
}

// Decimal returns the exact decimal value of c.
func (c Cents) Decimal() decimal.Decimal {
	return FromCents(c)
}

// String formats c with exactly two fractional digits.
func (c Cents) String() string {
	return FromCents(c).StringFixed(2)
}

// Abs returns the magnitude of c.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Split prorates c into n shares that sum exactly to c. The first |c%n|
// shares carry one extra minor unit in the direction of c's sign, so any two
// shares differ by at most one cent. n <= 0 yields nil.
func (c Cents) Split(n int) []Cents {
	if n <= 0 {
		return nil
	}
	q := c / Cents(n)
	r := c % Cents(n)

	step := Cents(1)
	if r < 0 {
		step = -1
		r = -r
	}

	shares := make([]Cents, n)
	for i := range shares {
		shares[i] = q
		if Cents(i) < r {
			shares[i] += step
		}
	}
	return shares
}

// Sum adds up a list of amounts.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}
