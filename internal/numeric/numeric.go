// Package numeric holds the exact-decimal helpers every checker shares:
// counting reported decimal places, the interval of true values a rounded
// number stands for, and the one rounding convention (half away from zero).
package numeric

import (
	"strings"

	"gostatcheck/domain/core"

	"github.com/shopspring/decimal"
)

// Interval is the closed-open range [Low, High) of true values that round to
// a reported number.
type Interval struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// Floats converts both ends to float64 for the distribution functions
func (iv Interval) Floats() (float64, float64) {
	return iv.Low.InexactFloat64(), iv.High.InexactFloat64()
}

// ContainsZero reports whether 0 lies between the two ends (inclusive)
func (iv Interval) ContainsZero() bool {
	return iv.Low.Sign() <= 0 && iv.High.Sign() >= 0
}

// Parse reads a reported numeral exactly, keeping trailing zeros in the exponent.
func Parse(text string) (decimal.Decimal, error) {
	s := normalize(text)
	if s == "" {
		return decimal.Zero, core.NewInvalidInputError("value", "empty numeral")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, core.NewInvalidInputError("value", "not a number: "+text)
	}
	return d, nil
}

// DecimalPlaces counts the digits after the decimal point in the literal text:
// "1.50" -> 2, ".05" -> 2, "3" -> 0.
func DecimalPlaces(text string) (int, error) {
	d, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return Places(d), nil
}

// Places is DecimalPlaces for an already parsed value
func Places(d decimal.Decimal) int {
	if exp := d.Exponent(); exp < 0 {
		return int(-exp)
	}
	return 0
}

// RoundingBounds returns the values that round to value at the given precision:
// value ± 0.5·10^-decimals.
func RoundingBounds(value decimal.Decimal, decimals int) Interval {
	half := decimal.New(5, -int32(decimals)-1)
	return Interval{
		Low:  value.Sub(half),
		High: value.Add(half),
	}
}

// BoundsFromText parses text and returns its rounding bounds and decimal places.
func BoundsFromText(text string) (Interval, int, error) {
	d, err := Parse(text)
	if err != nil {
		return Interval{}, 0, err
	}
	places := Places(d)
	return RoundingBounds(d, places), places, nil
}

// Round rounds half away from zero: 2.345 -> 2.35, -2.345 -> -2.35.
func Round(value decimal.Decimal, decimals int) decimal.Decimal {
	return value.Round(int32(decimals))
}

// RoundFloat is Round for float64 input, used for display only.
func RoundFloat(value float64, decimals int) float64 {
	return Round(decimal.NewFromFloat(value), decimals).InexactFloat64()
}

func normalize(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "−", "-")
	s = strings.TrimPrefix(s, "+")
	switch {
	case strings.HasPrefix(s, "."):
		s = "0" + s
	case strings.HasPrefix(s, "-."):
		s = "-0" + s[1:]
	}
	return s
}
