// Package pvalue recomputes p-values for reported t, F, chi2, z and r statistics.
package pvalue

import (
	"fmt"
	"math"

	"gostatcheck/domain/core"
	"gostatcheck/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// dfRule says whether a degree of freedom must be present or absent
type dfRule int

const (
	dfForbidden dfRule = iota
	dfRequired
)

// family describes one test type: which dfs it takes, whether its statistic is
// symmetric around zero, and the upper tail probability of its null distribution.
type family struct {
	df1       dfRule
	df2       dfRule
	symmetric bool
	// upper returns P(X >= x) for x >= 0
	upper func(x, df1, df2 float64) (float64, error)
}

var families = map[stats.TestType]family{
	stats.TestTypeT: {
		df1:       dfRequired,
		df2:       dfForbidden,
		symmetric: true,
		upper: func(x, df1, _ float64) (float64, error) {
			return studentsT(x, df1), nil
		},
	},
	stats.TestTypeF: {
		df1: dfRequired,
		df2: dfRequired,
		upper: func(x, df1, df2 float64) (float64, error) {
			if x <= 0 {
				return 1, nil
			}
			return distuv.F{D1: df1, D2: df2}.Survival(x), nil
		},
	},
	stats.TestTypeChi2: {
		df1: dfRequired,
		df2: dfForbidden,
		upper: func(x, df1, _ float64) (float64, error) {
			if x <= 0 {
				return 1, nil
			}
			return distuv.ChiSquared{K: df1}.Survival(x), nil
		},
	},
	stats.TestTypeZ: {
		df1:       dfForbidden,
		df2:       dfForbidden,
		symmetric: true,
		upper: func(x, _, _ float64) (float64, error) {
			return distuv.UnitNormal.Survival(x), nil
		},
	},
	stats.TestTypeR: {
		df1:       dfRequired,
		df2:       dfForbidden,
		symmetric: true,
		upper: func(r, df1, _ float64) (float64, error) {
			t, err := CorrelationToT(r, df1)
			if err != nil {
				return 0, err
			}
			return studentsT(t, df1), nil
		},
	},
}

// Supported reports whether testType has an entry in the dispatch table
func Supported(testType stats.TestType) bool {
	_, ok := families[testType]
	return ok
}

// DegreesOfFreedom reports which of df1 and df2 testType requires; the other
// must be absent. ok is false for an unsupported type.
func DegreesOfFreedom(testType stats.TestType) (df1, df2, ok bool) {
	fam, ok := families[testType]
	if !ok {
		return false, false, false
	}
	return fam.df1 == dfRequired, fam.df2 == dfRequired, true
}

// Symmetric reports whether the statistic's null distribution is symmetric around zero
func Symmetric(testType stats.TestType) bool {
	return families[testType].symmetric
}

// PValue computes the p-value of value under the null distribution of testType.
// Symmetric statistics use |value|; a two-tailed test doubles the upper tail and
// is capped at 1. F and chi2 are always upper-tailed and ignore tail.
func PValue(testType stats.TestType, value float64, df1, df2 *float64, tail stats.Tail) (float64, error) {
	fam, ok := families[testType]
	if !ok {
		return 0, core.NewParameterError("test_type", fmt.Sprintf("unsupported test type %q", testType))
	}
	d1, d2, err := fam.degrees(df1, df2)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, core.NewParameterError("test_value", "must be finite")
	}

	if !fam.symmetric {
		if value < 0 {
			return 0, core.NewParameterError("test_value", fmt.Sprintf("%s statistic cannot be negative", testType))
		}
		return fam.upper(value, d1, d2)
	}

	p, err := fam.upper(math.Abs(value), d1, d2)
	if err != nil {
		return 0, err
	}
	if tail != stats.TailOne {
		p = math.Min(2*p, 1)
	}
	return p, nil
}

// CorrelationToT converts a correlation with df = n-2 into a t statistic.
func CorrelationToT(r, df float64) (float64, error) {
	if math.Abs(r) >= 1 {
		return 0, core.NewNumericDomainError(fmt.Sprintf("correlation %g is outside (-1, 1)", r))
	}
	return r * math.Sqrt(df/(1-r*r)), nil
}

func studentsT(x, df float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(x)
}

func (f family) degrees(df1, df2 *float64) (float64, float64, error) {
	d1, err := checkDF("df1", df1, f.df1)
	if err != nil {
		return 0, 0, err
	}
	d2, err := checkDF("df2", df2, f.df2)
	if err != nil {
		return 0, 0, err
	}
	return d1, d2, nil
}

func checkDF(name string, df *float64, rule dfRule) (float64, error) {
	switch rule {
	case dfForbidden:
		if df != nil {
			return 0, core.NewParameterError(name, "not used by this test type")
		}
		return 0, nil
	default:
		if df == nil {
			return 0, core.NewParameterError(name, "missing")
		}
		if *df <= 0 || math.IsNaN(*df) || math.IsInf(*df, 0) {
			return 0, core.NewParameterError(name, fmt.Sprintf("must be positive, got %g", *df))
		}
		return *df, nil
	}
}
