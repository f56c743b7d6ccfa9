package statcheck

import (
	"fmt"
	"math"

	"gostatcheck/domain/core"
	"gostatcheck/domain/stats"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal/numeric"
	"gostatcheck/internal/pvalue"
)

// ValidPRange maps the rounding interval of a reported statistic onto the
// p-values it allows. The p-value is monotone in |statistic|, so evaluating
// the two interval ends is enough.
func ValidPRange(testType stats.TestType, valueText string, df1, df2 *float64, tail stats.Tail) (verdict.ValidPRange, error) {
	if !pvalue.Supported(testType) {
		return verdict.ValidPRange{}, core.NewParameterError("test_type", fmt.Sprintf("unsupported test type %q", testType))
	}
	value, err := numeric.Parse(valueText)
	if err != nil {
		return verdict.ValidPRange{}, err
	}
	iv := numeric.RoundingBounds(value, numeric.Places(value))
	low, high := iv.Floats()

	p := func(x float64) (float64, error) {
		return pvalue.PValue(testType, x, df1, df2, tail)
	}

	switch testType {
	case stats.TestTypeR:
		if math.Abs(value.InexactFloat64()) >= 1 {
			return verdict.ValidPRange{}, core.NewNumericDomainError(fmt.Sprintf("reported correlation %s is outside (-1, 1)", valueText))
		}
	case stats.TestTypeF, stats.TestTypeChi2:
		if value.Sign() < 0 {
			return verdict.ValidPRange{}, core.NewParameterError("test_value", fmt.Sprintf("%s statistic cannot be negative", testType))
		}
		low = math.Max(low, 0)
	}

	if pvalue.Symmetric(testType) && iv.ContainsZero() {
		// Both signs round to the reported value, so |statistic| spans [0, max]
		extreme := math.Max(math.Abs(low), math.Abs(high))
		lower, err := p(extreme)
		if err != nil {
			return verdict.ValidPRange{}, err
		}
		upper, err := p(0)
		if err != nil {
			return verdict.ValidPRange{}, err
		}
		return verdict.ValidPRange{Lower: lower, Upper: upper}, nil
	}

	pLow, err := p(low)
	if err != nil {
		return verdict.ValidPRange{}, err
	}
	pHigh, err := p(high)
	if err != nil {
		return verdict.ValidPRange{}, err
	}
	return verdict.ValidPRange{Lower: math.Min(pLow, pHigh), Upper: math.Max(pLow, pHigh)}, nil
}
