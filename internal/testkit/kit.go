// Package testkit holds in-memory adapters and fixtures shared by tests and
// by runs without a database.
package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal/records"
	"gostatcheck/ports"
)

// InMemoryRunRepository implements RunRepository with in-memory storage
type InMemoryRunRepository struct {
	runs map[core.RunID]verdict.Report
	mu   sync.RWMutex
}

var _ ports.RunRepository = (*InMemoryRunRepository)(nil)

func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]verdict.Report)}
}

func (s *InMemoryRunRepository) Save(ctx context.Context, report *verdict.Report) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("report has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[report.ID] = *report
	return nil
}

func (s *InMemoryRunRepository) Get(ctx context.Context, id core.RunID) (*verdict.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	return &report, nil
}

// List orders newest first, ties broken by id
func (s *InMemoryRunRepository) List(ctx context.Context, limit, offset int) ([]verdict.RunSummary, error) {
	s.mu.RLock()
	all := make([]verdict.RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		all = append(all, verdict.RunSummary{ID: r.ID, Kind: r.Kind, Source: r.Source, CreatedAt: r.CreatedAt, Summary: r.Summary})
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		ti, tj := all[i].CreatedAt.Time(), all[j].CreatedAt.Time()
		if ti.Equal(tj) {
			return all[i].ID > all[j].ID
		}
		return ti.After(tj)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []verdict.RunSummary{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Len returns the number of stored runs
func (s *InMemoryRunRepository) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// TestInput builds a test input from literal text fields
func TestInput(testType, df1, df2, value, operator, p string) records.TestInput {
	return records.TestInput{
		TestType:       testType,
		DF1:            records.Numeral(df1),
		DF2:            records.Numeral(df2),
		TestValue:      records.Numeral(value),
		Operator:       operator,
		ReportedPValue: records.Numeral(p),
	}
}

// MeanInput builds a mean input from literal text fields
func MeanInput(mean, n string) records.MeanInput {
	return records.MeanInput{ReportedMean: records.Numeral(mean), SampleSize: records.Numeral(n)}
}

// MixedTests is a small batch with a consistent, an inconsistent, a gross and a rejected record
func MixedTests() []records.TestInput {
	return []records.TestInput{
		TestInput("t", "30", "", "1.96", "=", ".059"),
		TestInput("f", "2", "20", "3.50", "=", ".03"),
		TestInput("f", "2", "20", "2.50", "<", ".04"),
		TestInput("t", "", "", "2.10", "=", ".05"),
	}
}

// MixedMeans is a small batch with a consistent, an inconsistent, a non-applicable and a rejected mean
func MixedMeans() []records.MeanInput {
	return []records.MeanInput{
		MeanInput("5.22", "9"),
		MeanInput("5.20", "9"),
		MeanInput("3.5", "40"),
		MeanInput("2.1", "0"),
	}
}
