package statcheck

import (
	"errors"
	"testing"

	"gostatcheck/domain/core"
	"gostatcheck/domain/stats"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal/numeric"
	"gostatcheck/internal/pvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-6

func tRecord(value string, df float64, op stats.Operator, p string, pv float64) stats.StatisticalTestRecord {
	decimals, _ := numeric.DecimalPlaces(value)
	return stats.StatisticalTestRecord{
		TestType:       stats.TestTypeT,
		DF1:            stats.Float(df),
		TestValueText:  value,
		Decimals:       decimals,
		Operator:       op,
		ReportedPValue: pv,
		PValueText:     p,
		Tail:           stats.TailTwo,
	}
}

func newChecker(t *testing.T) *Checker {
	t.Helper()
	c, err := NewChecker(DefaultAlpha)
	require.NoError(t, err)
	return c
}

// TestValidPRangeBoundaryCase verifies t(30) = 1.96 maps to (0.05873, 0.05996)
func TestValidPRangeBoundaryCase(t *testing.T) {
	rng, err := ValidPRange(stats.TestTypeT, "1.96", stats.Float(30), nil, stats.TailTwo)
	require.NoError(t, err)
	assert.InDelta(t, 0.05873385, rng.Lower, tolerance)
	assert.InDelta(t, 0.05995626, rng.Upper, tolerance)
	assert.Equal(t, "0.05873 to 0.05996", rng.String())
}

// TestValidPRangeContainsExactP verifies lower <= p(reported value) <= upper
func TestValidPRangeContainsExactP(t *testing.T) {
	tests := []struct {
		testType stats.TestType
		text     string
		value    float64
		df1, df2 *float64
	}{
		{stats.TestTypeT, "1.96", 1.96, stats.Float(30), nil},
		{stats.TestTypeT, "-2.1", -2.1, stats.Float(20), nil},
		{stats.TestTypeF, "4.5", 4.5, stats.Float(3), stats.Float(15)},
		{stats.TestTypeChi2, "7.15", 7.15, stats.Float(4), nil},
		{stats.TestTypeZ, "1.96", 1.96, nil, nil},
		{stats.TestTypeR, ".40", 0.4, stats.Float(30), nil},
		{stats.TestTypeR, "-0.12", -0.12, stats.Float(98), nil},
	}

	for _, tt := range tests {
		for _, tail := range []stats.Tail{stats.TailOne, stats.TailTwo} {
			rng, err := ValidPRange(tt.testType, tt.text, tt.df1, tt.df2, tail)
			require.NoError(t, err)
			exact, err := pvalue.PValue(tt.testType, tt.value, tt.df1, tt.df2, tail)
			require.NoError(t, err)
			assert.LessOrEqual(t, rng.Lower, exact, "%s %s %s", tt.testType, tt.text, tail)
			assert.GreaterOrEqual(t, rng.Upper, exact, "%s %s %s", tt.testType, tt.text, tail)
		}
	}
}

// TestValidPRangeReferenceValues checks each family against reference bounds
func TestValidPRangeReferenceValues(t *testing.T) {
	tests := []struct {
		name         string
		testType     stats.TestType
		text         string
		df1, df2     *float64
		lower, upper float64
	}{
		{"r", stats.TestTypeR, "0.40", stats.Float(30), nil, 0.02148257, 0.02525856},
		{"chi2", stats.TestTypeChi2, "7.15", stats.Float(4), nil, 0.12792041, 0.12842119},
		{"z", stats.TestTypeZ, "1.96", nil, nil, 0.04941424, 0.05058307},
		{"F", stats.TestTypeF, "4.5", stats.Float(3), stats.Float(15), 0.01853133, 0.01996138},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := ValidPRange(tt.testType, tt.text, tt.df1, tt.df2, stats.TailTwo)
			require.NoError(t, err)
			assert.InDelta(t, tt.lower, rng.Lower, tolerance)
			assert.InDelta(t, tt.upper, rng.Upper, tolerance)
		})
	}
}

// TestValidPRangeStraddlingZero verifies symmetric statistics that may be 0 reach p(0)
func TestValidPRangeStraddlingZero(t *testing.T) {
	rng, err := ValidPRange(stats.TestTypeT, "0.0", stats.Float(10), nil, stats.TailTwo)
	require.NoError(t, err)
	assert.InDelta(t, 0.96110699, rng.Lower, tolerance)
	assert.Equal(t, 1.0, rng.Upper)

	rng, err = ValidPRange(stats.TestTypeZ, "0.00", nil, nil, stats.TailOne)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, rng.Upper, 1e-12)
	assert.Less(t, rng.Lower, 0.5)
}

// TestValidPRangeClampsNonSymmetric verifies F and chi2 bounds stop at 0
func TestValidPRangeClampsNonSymmetric(t *testing.T) {
	rng, err := ValidPRange(stats.TestTypeF, "0.0", stats.Float(1), stats.Float(20), stats.TailTwo)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rng.Upper)
	assert.InDelta(t, 0.82533147, rng.Lower, tolerance)

	_, err = ValidPRange(stats.TestTypeChi2, "-1.2", stats.Float(2), nil, stats.TailTwo)
	assert.True(t, errors.Is(err, core.ErrInvalidParameters))
}

// TestValidPRangeCorrelationDomain verifies |r| >= 1 is rejected
func TestValidPRangeCorrelationDomain(t *testing.T) {
	_, err := ValidPRange(stats.TestTypeR, "1.00", stats.Float(10), nil, stats.TailTwo)
	assert.True(t, errors.Is(err, core.ErrNumericDomain))

	rng, err := ValidPRange(stats.TestTypeR, "1.0", stats.Float(10), nil, stats.TailTwo)
	assert.True(t, errors.Is(err, core.ErrNumericDomain))
	assert.Zero(t, rng)

	rng, err = ValidPRange(stats.TestTypeR, ".99", stats.Float(10), nil, stats.TailTwo)
	require.NoError(t, err)
	assert.LessOrEqual(t, rng.Lower, rng.Upper)
	assert.Less(t, rng.Upper, 1e-6)
}

// TestValidPRangeUnknownType verifies dispatch rejects unknown test types
func TestValidPRangeUnknownType(t *testing.T) {
	_, err := ValidPRange("w", "1.2", nil, nil, stats.TailTwo)
	assert.True(t, errors.Is(err, core.ErrInvalidParameters))

	_, err = ValidPRange(stats.TestTypeT, "abc", stats.Float(3), nil, stats.TailTwo)
	assert.True(t, errors.Is(err, core.ErrInvalidInputRecord))
}

// TestCheckBoundaryConsistent verifies t(30) = 1.96, p = .059 is consistent
func TestCheckBoundaryConsistent(t *testing.T) {
	v, err := newChecker(t).Check(tRecord("1.96", 30, stats.OperatorEqual, "0.059", 0.059))
	require.NoError(t, err)

	assert.True(t, v.Consistent)
	assert.False(t, v.GrossInconsistency)
	assert.Equal(t, verdict.ClassConsistent, v.Classification)
	assert.Equal(t, "t(30) = 1.96", v.APA)
	assert.Equal(t, "= 0.059", v.ReportedP)
	assert.Empty(t, v.Notes)
}

// TestCheckRegularInconsistency verifies a wrong p that keeps significance is not gross
func TestCheckRegularInconsistency(t *testing.T) {
	v, err := newChecker(t).Check(tRecord("1.96", 30, stats.OperatorEqual, ".07", 0.07))
	require.NoError(t, err)

	assert.False(t, v.Consistent)
	assert.False(t, v.GrossInconsistency)
	assert.Equal(t, verdict.ClassInconsistent, v.Classification)
	assert.Equal(t, []string{NoteInconsistent}, v.Notes)
}

// TestCheckOneTailedHint verifies the note for a p that only fits a one-tailed test
func TestCheckOneTailedHint(t *testing.T) {
	v, err := newChecker(t).Check(tRecord("1.96", 30, stats.OperatorEqual, ".03", 0.03))
	require.NoError(t, err)

	assert.False(t, v.Consistent)
	assert.True(t, v.GrossInconsistency)
	assert.Equal(t, verdict.ClassGross, v.Classification)
	assert.Equal(t, []string{NoteGross, NoteOneTailed}, v.Notes)
}

// TestCheckOperators verifies < and > compare against the range ends
func TestCheckOperators(t *testing.T) {
	c := newChecker(t)

	v, err := c.Check(tRecord("1.96", 30, stats.OperatorGreater, ".05", 0.05))
	require.NoError(t, err)
	assert.True(t, v.Consistent)

	v, err = c.Check(tRecord("1.96", 30, stats.OperatorLess, ".05", 0.05))
	require.NoError(t, err)
	assert.False(t, v.Consistent)
	assert.True(t, v.GrossInconsistency)

	v, err = c.Check(tRecord("1.96", 30, stats.OperatorLess, ".06", 0.06))
	require.NoError(t, err)
	assert.True(t, v.Consistent)
}

// TestCheckHuynhFeldt verifies F(2, 20) with epsilon .75 is checked on (1.5, 15)
func TestCheckHuynhFeldt(t *testing.T) {
	rec := stats.StatisticalTestRecord{
		TestType:       stats.TestTypeF,
		DF1:            stats.Float(2),
		DF2:            stats.Float(20),
		TestValueText:  "3.50",
		Decimals:       2,
		Operator:       stats.OperatorEqual,
		ReportedPValue: 0.067,
		PValueText:     ".067",
		Epsilon:        stats.Float(0.75),
		Tail:           stats.TailTwo,
	}

	v, err := newChecker(t).Check(rec)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.True(t, v.CorrectionApplied)
	assert.Equal(t, "F(1.5, 15) = 3.50", v.APA)
	assert.Contains(t, v.Notes, "Degrees of freedom were adjusted due to a Huynh-Feldt correction. Epsilon = 0.75")
	assert.InDelta(t, 0.06711697, v.ValidRange.Lower, tolerance)
	assert.InDelta(t, 0.06751634, v.ValidRange.Upper, tolerance)

	rec.Epsilon = nil
	v, err = newChecker(t).Check(rec)
	require.NoError(t, err)
	assert.False(t, v.Consistent)
	assert.False(t, v.CorrectionApplied)
}

// TestCheckHuynhFeldtSkippedForFractionalDF verifies corrected dfs are not corrected twice
func TestCheckHuynhFeldtSkippedForFractionalDF(t *testing.T) {
	rec := stats.StatisticalTestRecord{
		TestType:       stats.TestTypeF,
		DF1:            stats.Float(1.5),
		DF2:            stats.Float(15),
		TestValueText:  "3.50",
		Decimals:       2,
		Operator:       stats.OperatorEqual,
		ReportedPValue: 0.067,
		PValueText:     ".067",
		Epsilon:        stats.Float(0.75),
		Tail:           stats.TailTwo,
	}

	v, err := newChecker(t).Check(rec)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.False(t, v.CorrectionApplied)
	assert.Len(t, v.Notes, 1)
	assert.Contains(t, v.Notes[0], "not applied")
}

// TestCheckRejectsInvalidRecords verifies record errors carry their kind
func TestCheckRejectsInvalidRecords(t *testing.T) {
	c := newChecker(t)

	rec := tRecord("1.96", 30, stats.OperatorEqual, "0", 0)
	_, err := c.Check(rec)
	assert.True(t, errors.Is(err, core.ErrInvalidInputRecord))
	assert.Contains(t, err.Error(), "never exactly 0")

	rec = tRecord("1.96", 30, stats.OperatorEqual, ".05", 0.05)
	rec.Epsilon = stats.Float(0.8)
	_, err = c.Check(rec)
	assert.True(t, errors.Is(err, core.ErrInvalidParameters))

	rec = tRecord("1.96", 30, stats.OperatorEqual, ".05", 0.05)
	rec.DF1 = nil
	_, err = c.Check(rec)
	assert.True(t, errors.Is(err, core.ErrInvalidParameters))

	_, err = NewChecker(1)
	assert.Error(t, err)
	_, err = NewChecker(0)
	assert.Error(t, err)
}

// TestCheckUsesRecordDecimals verifies a record without value text is bounded at its own decimals
func TestCheckUsesRecordDecimals(t *testing.T) {
	rec := stats.StatisticalTestRecord{
		TestType:       stats.TestTypeT,
		DF1:            stats.Float(30),
		TestValue:      1.957,
		Decimals:       3,
		Operator:       stats.OperatorEqual,
		ReportedPValue: 0.0597,
		PValueText:     ".0597",
		Tail:           stats.TailTwo,
	}

	v, err := newChecker(t).Check(rec)
	require.NoError(t, err)
	assert.Equal(t, "t(30) = 1.957", v.APA)
	assert.InDelta(t, 0.05965, v.ValidRange.Lower, 1e-5)
	assert.InDelta(t, 0.05977, v.ValidRange.Upper, 1e-5)
	assert.True(t, v.Consistent)

	want, err := ValidPRange(stats.TestTypeT, "1.957", stats.Float(30), nil, stats.TailTwo)
	require.NoError(t, err)
	assert.Equal(t, want, v.ValidRange)

	rec.TestValue, rec.Decimals = 2, 0
	v, err = newChecker(t).Check(rec)
	require.NoError(t, err)
	assert.Equal(t, "t(30) = 2", v.APA)
}

// TestCheckRejectsDecimalsMismatch verifies Decimals must agree with the value text
func TestCheckRejectsDecimalsMismatch(t *testing.T) {
	rec := tRecord("1.96", 30, stats.OperatorEqual, ".059", 0.059)
	rec.Decimals = 3

	_, err := newChecker(t).Check(rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInputRecord))
	assert.Contains(t, err.Error(), "decimals")

	rec = tRecord("", 30, stats.OperatorEqual, ".059", 0.059)
	rec.TestValue, rec.Decimals = 1.96, -1
	_, err = newChecker(t).Check(rec)
	assert.True(t, errors.Is(err, core.ErrInvalidInputRecord))
}

// TestCheckReportedNS verifies a test reported as ns gets a range but no verdict on consistency
func TestCheckReportedNS(t *testing.T) {
	rec := tRecord("1.20", 30, stats.OperatorEqual, "ns", 0)
	rec.ReportedNS = true

	v, err := newChecker(t).Check(rec)
	require.NoError(t, err)
	assert.Equal(t, verdict.ClassNotCheckable, v.Classification)
	assert.False(t, v.Consistent)
	assert.False(t, v.GrossInconsistency)
	assert.Equal(t, []string{NoteReportedNS}, v.Notes)
	assert.Equal(t, "t(30) = 1.20, ns", v.APA)
	assert.Equal(t, "ns", v.ReportedP)
	assert.Equal(t, verdict.SignificanceNot, v.RecomputedSignificance)
	assert.Greater(t, v.ValidRange.Lower, 0.2)

	rec.DF1 = nil
	_, err = newChecker(t).Check(rec)
	assert.True(t, errors.Is(err, core.ErrInvalidParameters))
}

// TestClassifyGrossInconsistency verifies p < .04 against (0.08, 0.12) flips significance
func TestClassifyGrossInconsistency(t *testing.T) {
	rec := tRecord("1.50", 20, stats.OperatorLess, ".04", 0.04)
	rng := verdict.ValidPRange{Lower: 0.08, Upper: 0.12}

	v := Classify(rec, rng, 0.05)
	assert.False(t, v.Consistent)
	assert.True(t, v.GrossInconsistency)
	assert.Equal(t, verdict.SignificanceSignificant, v.ReportedSignificance)
	assert.Equal(t, verdict.SignificanceNot, v.RecomputedSignificance)
}

// TestClassifyUndeterminedNeverGross verifies a range straddling alpha is never gross
func TestClassifyUndeterminedNeverGross(t *testing.T) {
	rec := tRecord("2.00", 20, stats.OperatorLess, ".01", 0.01)
	rng := verdict.ValidPRange{Lower: 0.045, Upper: 0.055}

	v := Classify(rec, rng, 0.05)
	assert.False(t, v.Consistent)
	assert.False(t, v.GrossInconsistency)
	assert.Equal(t, verdict.SignificanceUndetermined, v.RecomputedSignificance)
}

// TestClassifyIdempotent verifies classification is a pure function of its inputs
func TestClassifyIdempotent(t *testing.T) {
	rec := tRecord("1.96", 30, stats.OperatorEqual, ".059", 0.059)
	rng := verdict.ValidPRange{Lower: 0.05873385, Upper: 0.05995626}

	first := Classify(rec, rng, 0.05)
	second := Classify(rec, rng, 0.05)
	assert.Equal(t, first, second)
}

// TestClassifyReportedIntervalHalfOpen verifies the reported p interval excludes its upper end
func TestClassifyReportedIntervalHalfOpen(t *testing.T) {
	rec := tRecord("1.96", 30, stats.OperatorEqual, ".05", 0.05)

	// [.045, .055) touches .055 only at its open end
	v := Classify(rec, verdict.ValidPRange{Lower: 0.055, Upper: 0.06}, 0.05)
	assert.False(t, v.Consistent)

	v = Classify(rec, verdict.ValidPRange{Lower: 0.04, Upper: 0.045}, 0.05)
	assert.True(t, v.Consistent)
}

// TestSignificance verifies the reported and recomputed rules at alpha
func TestSignificance(t *testing.T) {
	assert.Equal(t, verdict.SignificanceSignificant, ReportedSignificance(stats.OperatorEqual, 0.05, 0.05))
	assert.Equal(t, verdict.SignificanceSignificant, ReportedSignificance(stats.OperatorLess, 0.05, 0.05))
	assert.Equal(t, verdict.SignificanceNot, ReportedSignificance(stats.OperatorGreater, 0.05, 0.05))
	assert.Equal(t, verdict.SignificanceNot, ReportedSignificance(stats.OperatorEqual, 0.051, 0.05))

	assert.Equal(t, verdict.SignificanceSignificant, RecomputedSignificance(verdict.ValidPRange{Lower: 0.01, Upper: 0.049}, 0.05))
	assert.Equal(t, verdict.SignificanceNot, RecomputedSignificance(verdict.ValidPRange{Lower: 0.051, Upper: 0.06}, 0.05))
	assert.Equal(t, verdict.SignificanceUndetermined, RecomputedSignificance(verdict.ValidPRange{Lower: 0.04, Upper: 0.05}, 0.05))
}

// TestAPA verifies paper-style rendering for each family
func TestAPA(t *testing.T) {
	assert.Equal(t, "t(30) = 1.96", APA(stats.TestTypeT, stats.Float(30), nil, "1.96"))
	assert.Equal(t, "F(1.5, 15) = 3.50", APA(stats.TestTypeF, stats.Float(1.5), stats.Float(15), "3.50"))
	assert.Equal(t, "F(1.33, 26.67) = 2.10", APA(stats.TestTypeF, stats.Float(4.0/3), stats.Float(80.0/3), "2.10"))
	assert.Equal(t, "z = 1.96", APA(stats.TestTypeZ, nil, nil, "1.96"))
	assert.Equal(t, "chi2(4) = 7.15", APA(stats.TestTypeChi2, stats.Float(4), nil, "7.15"))
	assert.Equal(t, "r(98) = -.12", APA(stats.TestTypeR, stats.Float(98), nil, "-.12"))
}
