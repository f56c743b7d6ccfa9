// Package grim implements the granularity test for means of integer data:
// a mean of n integers is a multiple of 1/n, so only some rounded values are
// reachable for a given sample size.
package grim

import (
	"fmt"

	"gostatcheck/domain/core"
	"gostatcheck/domain/stats"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal/numeric"

	"github.com/shopspring/decimal"
)

// guardDigits keeps s/n exact enough that rounding at the reported precision
// never sees a spurious half-way digit.
const guardDigits = 20

// Test reports whether reportedMean is achievable as the mean of sampleSize integers.
func Test(reportedMean string, sampleSize int) (bool, error) {
	v, err := Check(stats.ReportedMean{Mean: reportedMean, SampleSize: sampleSize})
	if err != nil {
		return false, err
	}
	return v.Consistent, nil
}

// Check runs the test on m and fills in the display fields of the verdict.
func Check(m stats.ReportedMean) (verdict.GrimVerdict, error) {
	if m.SampleSize <= 0 {
		return verdict.GrimVerdict{}, core.NewInvalidInputError("sample_size", fmt.Sprintf("must be positive, got %d", m.SampleSize))
	}
	mean, err := numeric.Parse(m.Mean)
	if err != nil {
		return verdict.GrimVerdict{}, err
	}
	places := numeric.Places(mean)

	magnitude := mean.Abs()
	n := decimal.NewFromInt(int64(m.SampleSize))
	total := magnitude.Mul(n)

	consistent := false
	var nearest decimal.Decimal
	var nearestGap decimal.Decimal
	for i, sum := range []decimal.Decimal{total.Floor(), total.Ceil()} {
		exact := sum.DivRound(n, int32(places+guardDigits))
		gap := exact.Sub(magnitude).Abs()
		if i == 0 || gap.LessThan(nearestGap) {
			nearest, nearestGap = exact, gap
		}
		if numeric.Round(exact, places).Equal(magnitude) {
			consistent = true
			nearest = exact
			break
		}
	}

	nearest = numeric.Round(nearest, places)
	if mean.Sign() < 0 {
		nearest = nearest.Neg()
	}

	return verdict.GrimVerdict{
		Consistent:   consistent,
		ReportedMean: m.Mean,
		SampleSize:   m.SampleSize,
		Decimals:     places,
		Applicable:   Applicable(places, m.SampleSize),
		NearestMean:  nearest.StringFixed(int32(places)),
		Reasoning:    m.Reasoning,
	}, nil
}

// Applicable reports whether the test can detect anything: with n > 10^decimals
// every rounded value is reachable.
func Applicable(decimals, sampleSize int) bool {
	limit := 1
	for i := 0; i < decimals; i++ {
		if limit > sampleSize {
			return true
		}
		limit *= 10
	}
	return sampleSize <= limit
}
