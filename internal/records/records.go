// Package records converts loosely typed extractor output into validated
// records. Nothing is coerced: a value that breaks an invariant is rejected
// with a typed error.
package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gostatcheck/domain/core"
	"gostatcheck/domain/stats"
	"gostatcheck/internal/numeric"
	"gostatcheck/internal/pvalue"
)

// NotSignificant is the p text of a test reported only as "ns"
const NotSignificant = "ns"

// TestInput is one reported test as an extractor emits it
type TestInput struct {
	TestType       string  `json:"test_type"`
	DF1            Numeral `json:"df1"`
	DF2            Numeral `json:"df2"`
	TestValue      Numeral `json:"test_value"`
	Operator       string  `json:"operator"`
	ReportedPValue Numeral `json:"reported_p_value"`
	Epsilon        Numeral `json:"epsilon"`
	Tail           string  `json:"tail"`
}

// MeanInput is one reported mean as an extractor emits it
type MeanInput struct {
	ReportedMean Numeral `json:"reported_mean"`
	SampleSize   Numeral `json:"sample_size"`
	Reasoning    string  `json:"discrete_reasoning"`
}

// ToRecord validates in and returns the record the checker consumes.
func (in TestInput) ToRecord() (stats.StatisticalTestRecord, error) {
	var rec stats.StatisticalTestRecord

	testType, err := stats.ParseTestType(in.TestType)
	if err != nil {
		return rec, core.NewInvalidInputError("test_type", err.Error())
	}
	rec.TestType = testType

	needDF1, needDF2, ok := pvalue.DegreesOfFreedom(testType)
	if !ok {
		return rec, core.NewParameterError("test_type", fmt.Sprintf("unsupported test type %q", testType))
	}
	if rec.DF1, err = degree("df1", in.DF1, needDF1); err != nil {
		return rec, err
	}
	if rec.DF2, err = degree("df2", in.DF2, needDF2); err != nil {
		return rec, err
	}

	if in.TestValue.Empty() {
		return rec, core.NewInvalidInputError("test_value", "missing")
	}
	value, err := numeric.Parse(in.TestValue.String())
	if err != nil {
		return rec, err
	}
	rec.TestValueText = strings.TrimSpace(in.TestValue.String())
	rec.TestValue = value.InexactFloat64()
	rec.Decimals = numeric.Places(value)
	switch testType {
	case stats.TestTypeF, stats.TestTypeChi2:
		if value.Sign() < 0 {
			return rec, core.NewParameterError("test_value", fmt.Sprintf("%s statistic cannot be negative", testType))
		}
	case stats.TestTypeR:
		if math.Abs(rec.TestValue) >= 1 {
			return rec, core.NewNumericDomainError(fmt.Sprintf("correlation %s is outside (-1, 1)", rec.TestValueText))
		}
	}

	op := in.Operator
	if strings.TrimSpace(op) == "" {
		op = string(stats.OperatorEqual)
	}
	if rec.Operator, err = stats.ParseOperator(op); err != nil {
		return rec, core.NewInvalidInputError("operator", err.Error())
	}

	if rec.PValueText, rec.ReportedPValue, rec.ReportedNS, err = reportedP(in.ReportedPValue); err != nil {
		return rec, err
	}

	if !in.Epsilon.Empty() {
		if testType != stats.TestTypeF {
			return rec, core.NewParameterError("epsilon", "only F tests take a Huynh-Feldt epsilon")
		}
		eps, err := strconv.ParseFloat(in.Epsilon.String(), 64)
		if err != nil {
			return rec, core.NewInvalidInputError("epsilon", "not a number: "+in.Epsilon.String())
		}
		if !(eps > 0 && eps <= 1) {
			return rec, core.NewParameterError("epsilon", fmt.Sprintf("must be in (0, 1], got %g", eps))
		}
		rec.Epsilon = &eps
	}

	if rec.Tail, err = stats.ParseTail(in.Tail); err != nil {
		return rec, core.NewInvalidInputError("tail", err.Error())
	}
	return rec, nil
}

// ToRecord validates in and returns the mean the GRIM checker consumes.
func (in MeanInput) ToRecord() (stats.ReportedMean, error) {
	if in.ReportedMean.Empty() {
		return stats.ReportedMean{}, core.NewInvalidInputError("reported_mean", "missing")
	}
	mean := strings.TrimSpace(in.ReportedMean.String())
	places, err := numeric.DecimalPlaces(mean)
	if err != nil {
		return stats.ReportedMean{}, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(in.SampleSize.String()))
	if err != nil {
		return stats.ReportedMean{}, core.NewInvalidInputError("sample_size", "not an integer: "+in.SampleSize.String())
	}
	if n <= 0 {
		return stats.ReportedMean{}, core.NewInvalidInputError("sample_size", fmt.Sprintf("must be positive, got %d", n))
	}

	return stats.ReportedMean{
		Mean:       mean,
		SampleSize: n,
		Decimals:   places,
		Reasoning:  strings.TrimSpace(in.Reasoning),
	}, nil
}

// reportedP returns the literal p text and its value; "ns" yields ns = true
// and no value.
func reportedP(raw Numeral) (text string, p float64, ns bool, err error) {
	text = strings.TrimSpace(raw.String())
	if text == "" {
		return "", 0, false, core.NewInvalidInputError("reported_p_value", "missing")
	}
	if strings.EqualFold(strings.Trim(text, ". "), "ns") || strings.EqualFold(text, "n.s.") {
		return NotSignificant, 0, true, nil
	}
	d, err := numeric.Parse(text)
	if err != nil {
		return "", 0, false, err
	}
	p = d.InexactFloat64()
	if !(p > 0 && p <= 1) {
		return "", 0, false, core.NewInvalidInputError("reported_p_value",
			fmt.Sprintf("must be in (0, 1], got %s; a p-value is never exactly 0", text))
	}
	return text, p, false, nil
}

func degree(name string, raw Numeral, required bool) (*float64, error) {
	if raw.Empty() {
		if required {
			return nil, core.NewParameterError(name, "missing")
		}
		return nil, nil
	}
	if !required {
		return nil, core.NewParameterError(name, "not used by this test type")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw.String()), 64)
	if err != nil {
		return nil, core.NewInvalidInputError(name, "not a number: "+raw.String())
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return nil, core.NewParameterError(name, fmt.Sprintf("must be positive, got %g", v))
	}
	return &v, nil
}
