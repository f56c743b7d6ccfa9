// Package statcheck decides whether a reported test statistic and its p-value
// agree once the rounding of both is taken into account.
package statcheck

import (
	"fmt"
	"strconv"
	"strings"

	"gostatcheck/domain/core"
	"gostatcheck/domain/stats"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal/numeric"
	"gostatcheck/internal/pvalue"

	mstats "github.com/montanaflynn/stats"
)

// Note texts attached to verdicts
const (
	NoteGross        = "Gross inconsistency: reported p-value and recalculated p-value differ in significance."
	NoteInconsistent = "Recalculated p-value does not match the reported p-value."
	NoteOneTailed    = "Consistent for one-tailed, inconsistent for two-tailed"
	NoteReportedNS   = "Reported as ns"
)

// DefaultAlpha is the conventional significance level
const DefaultAlpha = 0.05

// Checker runs the full recalculation for one record at a fixed alpha
type Checker struct {
	alpha float64
}

// NewChecker creates a checker; alpha must lie in (0, 1)
func NewChecker(alpha float64) (*Checker, error) {
	if !(alpha > 0 && alpha < 1) {
		return nil, core.NewParameterError("alpha", fmt.Sprintf("must be in (0, 1), got %g", alpha))
	}
	return &Checker{alpha: alpha}, nil
}

// Alpha returns the significance level
func (c *Checker) Alpha() float64 {
	return c.alpha
}

// Check recomputes the valid p range for rec, applying a Huynh-Feldt correction
// when one was reported, and classifies the reported p-value against it.
func (c *Checker) Check(rec stats.StatisticalTestRecord) (verdict.StatcheckVerdict, error) {
	if !rec.ReportedNS && !(rec.ReportedPValue > 0 && rec.ReportedPValue <= 1) {
		return verdict.StatcheckVerdict{}, core.NewInvalidInputError("reported_p_value",
			fmt.Sprintf("must be in (0, 1], got %g; a p-value is never exactly 0", rec.ReportedPValue))
	}

	df1, df2 := rec.DF1, rec.DF2
	var correction *pvalue.Correction
	if rec.Epsilon != nil {
		if rec.TestType != stats.TestTypeF {
			return verdict.StatcheckVerdict{}, core.NewParameterError("epsilon", "only F tests take a Huynh-Feldt epsilon")
		}
		if df1 == nil || df2 == nil {
			return verdict.StatcheckVerdict{}, core.NewParameterError("df2", "F-test requires two degrees of freedom")
		}
		hf, err := pvalue.HuynhFeldt(*df1, *df2, *rec.Epsilon)
		if err != nil {
			return verdict.StatcheckVerdict{}, err
		}
		correction = &hf
		df1, df2 = &hf.DF1, &hf.DF2
	}

	text, err := valueText(rec)
	if err != nil {
		return verdict.StatcheckVerdict{}, err
	}
	rng, err := ValidPRange(rec.TestType, text, df1, df2, rec.Tail)
	if err != nil {
		return verdict.StatcheckVerdict{}, err
	}

	v := Classify(rec, rng, c.alpha)
	switch v.Classification {
	case verdict.ClassGross:
		v.Notes = append(v.Notes, NoteGross)
	case verdict.ClassInconsistent:
		v.Notes = append(v.Notes, NoteInconsistent)
	case verdict.ClassNotCheckable:
		v.Notes = append(v.Notes, NoteReportedNS)
	}

	if !v.Consistent && !rec.ReportedNS && rec.Tail != stats.TailOne && pvalue.Symmetric(rec.TestType) {
		oneTailed, err := ValidPRange(rec.TestType, text, df1, df2, stats.TailOne)
		if err == nil && Classify(rec, oneTailed, c.alpha).Consistent {
			v.Notes = append(v.Notes, NoteOneTailed)
		}
	}

	if correction != nil {
		v.CorrectionApplied = correction.Applied
		v.Notes = append(v.Notes, correction.Note)
	}
	v.APA = APA(rec.TestType, df1, df2, text)
	if rec.ReportedNS {
		v.APA += ", ns"
	}

	return v, nil
}

// Classify compares the reported p-value of rec with rng. It has no side effects.
// A p-value reported only as "ns" cannot be compared and is not_checkable.
func Classify(rec stats.StatisticalTestRecord, rng verdict.ValidPRange, alpha float64) verdict.StatcheckVerdict {
	if rec.ReportedNS {
		return verdict.StatcheckVerdict{
			Classification:         verdict.ClassNotCheckable,
			ValidRange:             rng,
			ReportedP:              pText(rec),
			ReportedSignificance:   verdict.SignificanceNot,
			RecomputedSignificance: RecomputedSignificance(rng, alpha),
		}
	}

	p := rec.ReportedPValue

	var consistent bool
	switch rec.Operator {
	case stats.OperatorLess:
		consistent = rng.Lower < p
	case stats.OperatorGreater:
		consistent = rng.Upper > p
	default:
		// the reported p stands for [p - h, p + h)
		low, high := reportedInterval(rec)
		consistent = low <= rng.Upper && high > rng.Lower
	}

	reported := ReportedSignificance(rec.Operator, p, alpha)
	recomputed := RecomputedSignificance(rng, alpha)
	gross := !consistent &&
		recomputed != verdict.SignificanceUndetermined &&
		reported != recomputed

	class := verdict.ClassConsistent
	switch {
	case gross:
		class = verdict.ClassGross
	case !consistent:
		class = verdict.ClassInconsistent
	}

	return verdict.StatcheckVerdict{
		Consistent:             consistent,
		GrossInconsistency:     gross,
		Classification:         class,
		ValidRange:             rng,
		ReportedP:              fmt.Sprintf("%s %s", operatorOrEqual(rec.Operator), pText(rec)),
		ReportedSignificance:   reported,
		RecomputedSignificance: recomputed,
	}
}

// ReportedSignificance is the conclusion the authors drew at alpha
func ReportedSignificance(op stats.Operator, p, alpha float64) verdict.Significance {
	if op == stats.OperatorGreater {
		if p < alpha {
			return verdict.SignificanceSignificant
		}
		return verdict.SignificanceNot
	}
	if p <= alpha {
		return verdict.SignificanceSignificant
	}
	return verdict.SignificanceNot
}

// RecomputedSignificance is undetermined when alpha falls inside rng
func RecomputedSignificance(rng verdict.ValidPRange, alpha float64) verdict.Significance {
	switch {
	case rng.Upper < alpha:
		return verdict.SignificanceSignificant
	case rng.Lower > alpha:
		return verdict.SignificanceNot
	default:
		return verdict.SignificanceUndetermined
	}
}

var apaLabels = map[stats.TestType]string{
	stats.TestTypeR:    "r",
	stats.TestTypeT:    "t",
	stats.TestTypeF:    "F",
	stats.TestTypeChi2: "chi2",
	stats.TestTypeZ:    "z",
}

// APA renders a statistic the way it is written in a paper, e.g. "F(1.5, 15) = 3.50".
// Degrees of freedom are rounded to two places.
func APA(testType stats.TestType, df1, df2 *float64, valueText string) string {
	label, ok := apaLabels[testType]
	if !ok {
		label = string(testType)
	}

	var dfs []string
	for _, df := range []*float64{df1, df2} {
		if df != nil {
			dfs = append(dfs, formatDF(*df))
		}
	}
	if len(dfs) == 0 {
		return fmt.Sprintf("%s = %s", label, valueText)
	}
	return fmt.Sprintf("%s(%s) = %s", label, strings.Join(dfs, ", "), valueText)
}

func formatDF(df float64) string {
	rounded, err := mstats.Round(df, 2)
	if err != nil {
		rounded = df
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// valueText is the statistic as reported. Without TestValueText the value is
// written at Decimals places; with it, Decimals must agree with the text.
func valueText(rec stats.StatisticalTestRecord) (string, error) {
	if rec.TestValueText == "" {
		if rec.Decimals < 0 {
			return "", core.NewInvalidInputError("decimals", fmt.Sprintf("must not be negative, got %d", rec.Decimals))
		}
		return strconv.FormatFloat(rec.TestValue, 'f', rec.Decimals, 64), nil
	}
	places, err := numeric.DecimalPlaces(rec.TestValueText)
	if err != nil {
		return "", err
	}
	if places != rec.Decimals {
		return "", core.NewInvalidInputError("decimals",
			fmt.Sprintf("%d does not match test value %q with %d decimal places", rec.Decimals, rec.TestValueText, places))
	}
	return rec.TestValueText, nil
}

func pText(rec stats.StatisticalTestRecord) string {
	if rec.ReportedNS {
		return "ns"
	}
	if rec.PValueText != "" {
		return rec.PValueText
	}
	return strconv.FormatFloat(rec.ReportedPValue, 'f', -1, 64)
}

func reportedInterval(rec stats.StatisticalTestRecord) (float64, float64) {
	iv, _, err := numeric.BoundsFromText(pText(rec))
	if err != nil {
		return rec.ReportedPValue, rec.ReportedPValue
	}
	return iv.Floats()
}

func operatorOrEqual(op stats.Operator) stats.Operator {
	if op == "" {
		return stats.OperatorEqual
	}
	return op
}
