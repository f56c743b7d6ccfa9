package app

import (
	"context"

	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
)

// Consensus runs once repeatedly and returns the report whose rendered table
// came up most often, with Frequency and Runs filled in. Ties go to the
// earliest run.
func Consensus(ctx context.Context, runs int, once func(ctx context.Context) (*verdict.Report, error)) (*verdict.Report, error) {
	runs, err := ValidateRuns(runs)
	if err != nil {
		return nil, err
	}

	reports := make([]*verdict.Report, 0, runs)
	for i := 0; i < runs; i++ {
		report, err := once(ctx)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return MostFrequent(reports), nil
}

// MostFrequent picks the report with the most common fingerprint
func MostFrequent(reports []*verdict.Report) *verdict.Report {
	if len(reports) == 0 {
		return nil
	}
	counts := make(map[core.Hash]int, len(reports))
	for _, r := range reports {
		counts[r.Fingerprint]++
	}

	best := reports[0]
	for _, r := range reports[1:] {
		if counts[r.Fingerprint] > counts[best.Fingerprint] {
			best = r
		}
	}
	best.Frequency = counts[best.Fingerprint]
	best.Runs = len(reports)
	return best
}
