package stats

import (
	"fmt"
	"strings"
)

// TestType names the statistic a record reports
type TestType string

const (
	TestTypeR    TestType = "r"
	TestTypeT    TestType = "t"
	TestTypeF    TestType = "f"
	TestTypeChi2 TestType = "chi2"
	TestTypeZ    TestType = "z"
)

// ParseTestType normalizes the spellings extractors tend to produce
func ParseTestType(s string) (TestType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r":
		return TestTypeR, nil
	case "t":
		return TestTypeT, nil
	case "f":
		return TestTypeF, nil
	case "chi2", "chi^2", "χ2", "χ²", "x2":
		return TestTypeChi2, nil
	case "z":
		return TestTypeZ, nil
	}
	return "", fmt.Errorf("unknown test type %q", s)
}

// Operator is the comparison used when the p-value was reported
type Operator string

const (
	OperatorEqual   Operator = "="
	OperatorLess    Operator = "<"
	OperatorGreater Operator = ">"
)

// ParseOperator accepts =, < and >; <= and >= are folded onto < and >
func ParseOperator(s string) (Operator, error) {
	switch strings.TrimSpace(s) {
	case "=", "==":
		return OperatorEqual, nil
	case "<", "<=", "≤":
		return OperatorLess, nil
	case ">", ">=", "≥":
		return OperatorGreater, nil
	}
	return "", fmt.Errorf("unknown p-value operator %q", s)
}

// Tail is the sidedness of the reported test
type Tail string

const (
	TailOne Tail = "one"
	TailTwo Tail = "two"
)

// ParseTail defaults to a two-tailed test when s is empty
func ParseTail(s string) (Tail, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "two", "2", "two-tailed":
		return TailTwo, nil
	case "one", "1", "one-tailed":
		return TailOne, nil
	}
	return "", fmt.Errorf("unknown tail %q", s)
}

// StatisticalTestRecord is one validated NHST claim
// INVARIANTS:
// - DF1/DF2 presence follows the test type (t, chi2, r: DF1 only; f: both; z: none)
// - ReportedPValue in (0, 1], unless ReportedNS (then 0 and PValueText "ns")
// - Epsilon only on f and in (0, 1]
// - Decimals is the number of decimal places in TestValueText
type StatisticalTestRecord struct {
	TestType       TestType `json:"test_type"`
	DF1            *float64 `json:"df1,omitempty"`
	DF2            *float64 `json:"df2,omitempty"`
	TestValue      float64  `json:"test_value"`
	TestValueText  string   `json:"test_value_text"`
	Decimals       int      `json:"decimals"`
	Operator       Operator `json:"operator"`
	ReportedPValue float64  `json:"reported_p_value"`
	PValueText     string   `json:"reported_p_value_text"`
	ReportedNS     bool     `json:"reported_ns,omitempty"`
	Epsilon        *float64 `json:"epsilon,omitempty"`
	Tail           Tail     `json:"tail"`
}

// ReportedMean is one extracted (mean, n) pair
type ReportedMean struct {
	Mean       string `json:"mean"`
	SampleSize int    `json:"sample_size"`
	Decimals   int    `json:"decimals"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// Float returns a pointer to v, for optional degrees of freedom
func Float(v float64) *float64 {
	return &v
}
