package verdict

import (
	"fmt"

	"gostatcheck/domain/core"
	"gostatcheck/domain/stats"
)

// Classification is the three-way statcheck outcome, plus not_checkable for a
// test whose p-value was only reported as "ns"
type Classification string

const (
	ClassConsistent   Classification = "consistent"
	ClassInconsistent Classification = "inconsistent"
	ClassGross        Classification = "gross_inconsistency"
	ClassNotCheckable Classification = "not_checkable"
)

// Significance is the conclusion drawn at alpha
type Significance string

const (
	SignificanceSignificant  Significance = "significant"
	SignificanceNot          Significance = "not_significant"
	SignificanceUndetermined Significance = "undetermined"
)

// ValidPRange is the set of p-values compatible with a rounded statistic
// INVARIANTS: 0 <= Lower <= Upper <= 1
type ValidPRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether p lies in the closed range
func (r ValidPRange) Contains(p float64) bool {
	return p >= r.Lower && p <= r.Upper
}

// String renders the range with five decimals
func (r ValidPRange) String() string {
	return fmt.Sprintf("%.5f to %.5f", r.Lower, r.Upper)
}

// GrimVerdict is the result of checking one reported mean
type GrimVerdict struct {
	Consistent   bool   `json:"consistent"`
	ReportedMean string `json:"reported_mean"`
	SampleSize   int    `json:"sample_size"`
	Decimals     int    `json:"decimals"`
	Applicable   bool   `json:"applicable"`
	NearestMean  string `json:"nearest_mean"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// StatcheckVerdict is the result of checking one reported test
type StatcheckVerdict struct {
	Consistent             bool           `json:"consistent"`
	GrossInconsistency     bool           `json:"gross_inconsistency"`
	Classification         Classification `json:"classification"`
	ValidRange             ValidPRange    `json:"valid_range"`
	APA                    string         `json:"apa"`
	ReportedP              string         `json:"reported_p"`
	ReportedSignificance   Significance   `json:"reported_significance"`
	RecomputedSignificance Significance   `json:"recomputed_significance"`
	Notes                  []string       `json:"notes,omitempty"`
	CorrectionApplied      bool           `json:"correction_applied"`
}

// StatcheckOutcome pairs a record with its verdict or the reason it was rejected
type StatcheckOutcome struct {
	Index     int                          `json:"index"`
	Record    *stats.StatisticalTestRecord `json:"record,omitempty"`
	Verdict   *StatcheckVerdict            `json:"verdict,omitempty"`
	Err       error                        `json:"-"`
	Error     string                       `json:"error,omitempty"`
	ErrorKind string                       `json:"error_kind,omitempty"`
}

// GrimOutcome pairs a mean with its verdict or the reason it was rejected
type GrimOutcome struct {
	Index     int                 `json:"index"`
	Mean      *stats.ReportedMean `json:"mean,omitempty"`
	Verdict   *GrimVerdict        `json:"verdict,omitempty"`
	Err       error               `json:"-"`
	Error     string              `json:"error,omitempty"`
	ErrorKind string              `json:"error_kind,omitempty"`
}

// Fail records err on the outcome
func (o *StatcheckOutcome) Fail(err error) {
	o.Err = err
	o.Error = err.Error()
	o.ErrorKind = core.ErrorKind(err)
}

// Fail records err on the outcome
func (o *GrimOutcome) Fail(err error) {
	o.Err = err
	o.Error = err.Error()
	o.ErrorKind = core.ErrorKind(err)
}

// Summary counts outcomes of a batch
type Summary struct {
	Total          int     `json:"total"`
	Checked        int     `json:"checked"`
	Rejected       int     `json:"rejected"`
	Consistent     int     `json:"consistent"`
	Inconsistent   int     `json:"inconsistent"`
	Gross          int     `json:"gross"`
	NotApplicable  int     `json:"not_applicable,omitempty"`
	MedianDistance float64 `json:"median_distance,omitempty"`
	MaxDistance    float64 `json:"max_distance,omitempty"`
}

// Kind tells which analyzer produced a report
type Kind string

const (
	KindStatcheck Kind = "statcheck"
	KindGRIM      Kind = "grim"
)

// Report is one complete run of an analyzer over a source
type Report struct {
	ID        core.RunID         `json:"id"`
	Kind      Kind               `json:"kind"`
	Source    string             `json:"source"`
	CreatedAt core.Timestamp     `json:"created_at"`
	Statcheck []StatcheckOutcome `json:"statcheck,omitempty"`
	GRIM      []GrimOutcome      `json:"grim,omitempty"`
	Summary   Summary            `json:"summary"`
	// Fingerprint identifies the rendered table, so repeated runs can be compared
	Fingerprint core.Hash `json:"fingerprint"`
	Frequency   int       `json:"frequency,omitempty"`
	Runs        int       `json:"runs,omitempty"`
}

// RunSummary is the listing view of a stored report
type RunSummary struct {
	ID        core.RunID     `json:"id"`
	Kind      Kind           `json:"kind"`
	Source    string         `json:"source"`
	CreatedAt core.Timestamp `json:"created_at"`
	Summary   Summary        `json:"summary"`
}
