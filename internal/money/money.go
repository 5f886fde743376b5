// Package money holds the integer monetary and percentage units used by the
// splitting engine, and their conversion to and from decimal strings.
//
// Amounts are minor units (cents). Percentages are hundredths of a percent, so
// FullPercent (10000) is 100%. Keeping both as integers lets every split sum
// exactly to its target without epsilon comparisons.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places carried by both Amount and Percent.
const Scale = 2

// FullPercent is 100% expressed in Percent units.
const FullPercent Percent = 100 * 100

var (
	// ErrPrecision is returned when a decimal has more places than Scale.
	ErrPrecision = errors.New("too many decimal places")
	// ErrOutOfRange is returned when a decimal does not fit in int64 minor units.
	ErrOutOfRange = errors.New("value out of range")
)

// Amount is a monetary value in minor units.
type Amount int64

// Percent is a percentage in hundredths of a percent.
type Percent int64

// ParseAmount parses a decimal string such as "12.34" into minor units.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	units, err := toUnits(d)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount(units), nil
}

// ParsePercent parses a decimal string such as "33.33" into Percent units.
func ParsePercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	units, err := toUnits(d)
	if err != nil {
		return 0, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	return Percent(units), nil
}

// AmountFromDecimal converts a decimal to minor units.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	units, err := toUnits(d)
	return Amount(units), err
}

// PercentFromDecimal converts a decimal percentage to Percent units.
func PercentFromDecimal(d decimal.Decimal) (Percent, error) {
	units, err := toUnits(d)
	return Percent(units), err
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Decimal returns the percentage as a plain decimal (50.00 for half).
func (p Percent) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -Scale)
}

func (p Percent) String() string {
	return p.Decimal().StringFixed(Scale) + "%"
}

// Of returns the floor of p applied to a, together with the remainder of the
// division in units of 1/FullPercent minor units. Callers distributing a total
// by percentages use the remainder to rank leftover units.
func (p Percent) Of(a Amount) (Amount, int64) {
	n := int64(a) * int64(p)
	return Amount(n / int64(FullPercent)), n % int64(FullPercent)
}

func toUnits(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(Scale)
	if !shifted.IsInteger() {
		return 0, ErrPrecision
	}
	if shifted.Cmp(decimal.NewFromInt(maxUnits)) > 0 || shifted.Cmp(decimal.NewFromInt(-maxUnits)) < 0 {
		return 0, ErrOutOfRange
	}
	return shifted.IntPart(), nil
}

// maxUnits bounds parsed values so that Percent.Of cannot overflow int64.
const maxUnits = int64(1) << 48
