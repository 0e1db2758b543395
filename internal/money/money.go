// Package money represents monetary amounts as integer cents.
//
// All arithmetic in the application happens on cents so that split and balance
// computations are exact to the currency's minimum unit. Floating point only
// appears at the JSON boundary.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidAmount is returned when an amount cannot be parsed or is not positive.
var ErrInvalidAmount = errors.New("invalid amount")

// Cents is a monetary amount in the currency's minimum unit.
// Negative values are meaningful for net balances.
type Cents int64

// FromFloat converts a decimal amount (e.g. a JSON number like 12.345) to cents
// with half-up rounding on the third decimal place.
func FromFloat(v float64) Cents {
	return Cents(math.Round(v * 100))
}

// ParsePositive converts a decimal amount to cents and rejects zero or negative
// values. Used for expense, settlement and budget amounts.
func ParsePositive(v float64) (Cents, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	c := FromFloat(v)
	if c <= 0 {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	return c, nil
}

// Float returns the decimal value for JSON responses and display.
func (c Cents) Float() float64 {
	return float64(c) / 100.0
}

// MarshalJSON emits the amount as a decimal number with two decimal places,
// e.g. 1234 cents -> 12.34.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(c.Float(), 'f', 2, 64)), nil
}

// UnmarshalJSON accepts a decimal number and converts it to cents with
// half-up rounding on the third decimal place.
func (c *Cents) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	*c = FromFloat(v)
	return nil
}

// String formats the amount with two decimal places.
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
