package app

import (
	"math"
	"strconv"
	"strings"

	"gostatcheck/domain/core"
	"gostatcheck/domain/stats"
	"gostatcheck/domain/verdict"

	mstats "github.com/montanaflynn/stats"
)

// GrimTableOptions controls which GRIM rows are rendered
type GrimTableOptions struct {
	ApplicableOnly bool // hide means whose sample is too large for GRIM to say anything
	Dedupe         bool // keep the first row of each (mean, n) pair
}

// DefaultGrimTableOptions shows only applicable means, once each
var DefaultGrimTableOptions = GrimTableOptions{ApplicableOnly: true, Dedupe: true}

// StatcheckTable renders checked outcomes; rejected records are left out
func StatcheckTable(outcomes []verdict.StatcheckOutcome) verdict.Table {
	table := verdict.Table{Headers: verdict.StatcheckColumns, Rows: [][]string{}}
	for _, o := range outcomes {
		if o.Verdict == nil {
			continue
		}
		v := o.Verdict
		notes := "-"
		if len(v.Notes) > 0 {
			notes = strings.Join(v.Notes, " ")
		}
		consistent, validRange := yesNo(v.Consistent), v.ValidRange.String()
		if v.Classification == verdict.ClassNotCheckable {
			consistent, validRange = "N/A", "N/A"
		}
		table.Rows = append(table.Rows, []string{
			consistent,
			v.APA,
			v.ReportedP,
			validRange,
			notes,
		})
	}
	return table
}

// GrimTable renders checked GRIM outcomes
func GrimTable(outcomes []verdict.GrimOutcome, opts GrimTableOptions) verdict.Table {
	table := verdict.Table{Headers: verdict.GrimColumns, Rows: [][]string{}}
	seen := make(map[string]bool)
	for _, o := range outcomes {
		if o.Verdict == nil {
			continue
		}
		v := o.Verdict
		if opts.ApplicableOnly && !v.Applicable {
			continue
		}
		if opts.Dedupe {
			key := v.ReportedMean + "/" + strconv.Itoa(v.SampleSize)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		table.Rows = append(table.Rows, []string{
			yesNo(v.Consistent),
			v.ReportedMean,
			strconv.Itoa(v.SampleSize),
			strconv.Itoa(v.Decimals),
			v.Reasoning,
		})
	}
	return table
}

// Fingerprint hashes the rendered table of a report
func Fingerprint(table verdict.Table) core.Hash {
	return core.ComputeTableHash(table.Rows)
}

// SummarizeStatcheck counts outcomes and describes how far inconsistent
// p-values sit from their valid range. Tests reported as "ns" count as not
// applicable and have no distance.
func SummarizeStatcheck(outcomes []verdict.StatcheckOutcome) verdict.Summary {
	s := verdict.Summary{Total: len(outcomes)}
	var distances mstats.Float64Data
	for _, o := range outcomes {
		if o.Verdict == nil {
			s.Rejected++
			continue
		}
		s.Checked++
		switch o.Verdict.Classification {
		case verdict.ClassGross:
			s.Gross++
			s.Inconsistent++
		case verdict.ClassInconsistent:
			s.Inconsistent++
		case verdict.ClassNotCheckable:
			s.NotApplicable++
			continue
		default:
			s.Consistent++
		}
		if o.Record != nil {
			distances = append(distances, Distance(*o.Record, *o.Verdict))
		}
	}
	if len(distances) > 0 {
		s.MedianDistance, _ = mstats.Median(distances)
		s.MaxDistance, _ = mstats.Max(distances)
	}
	return s
}

// SummarizeGrim counts GRIM outcomes
func SummarizeGrim(outcomes []verdict.GrimOutcome) verdict.Summary {
	s := verdict.Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Verdict == nil {
			s.Rejected++
			continue
		}
		s.Checked++
		if o.Verdict.Consistent {
			s.Consistent++
		} else {
			s.Inconsistent++
		}
		if !o.Verdict.Applicable {
			s.NotApplicable++
		}
	}
	return s
}

// Distance is how far the reported p-value lies outside the valid range; 0 when consistent
func Distance(rec stats.StatisticalTestRecord, v verdict.StatcheckVerdict) float64 {
	if v.Consistent {
		return 0
	}
	p := rec.ReportedPValue
	r := v.ValidRange
	switch rec.Operator {
	case stats.OperatorLess:
		return math.Max(r.Lower-p, 0)
	case stats.OperatorGreater:
		return math.Max(p-r.Upper, 0)
	default:
		if r.Contains(p) {
			return 0
		}
		return math.Min(math.Abs(p-r.Lower), math.Abs(p-r.Upper))
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
