package app

import (
	"context"

	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal"
	"gostatcheck/internal/errors"
	"gostatcheck/internal/records"
	"gostatcheck/internal/statcheck"
	"gostatcheck/internal/validation"
	"gostatcheck/ports"
)

// StatcheckService runs the statcheck pipeline: document text is segmented,
// reported tests are extracted, and every record is checked.
type StatcheckService struct {
	checker   *statcheck.Checker
	executor  *validation.Executor
	extractor ports.TestExtractor  // optional; document checks need it
	reader    ports.DocumentReader // optional; file checks need it
	segmenter Segmenter            // optional; document checks need it
	runs      ports.RunRepository  // optional; reports are saved when set
	logger    *internal.Logger
}

// StatcheckDeps wires a StatcheckService
type StatcheckDeps struct {
	Checker   *statcheck.Checker
	Executor  *validation.Executor
	Extractor ports.TestExtractor
	Reader    ports.DocumentReader
	Segmenter Segmenter
	Runs      ports.RunRepository
}

// NewStatcheckService creates a statcheck service
func NewStatcheckService(deps StatcheckDeps) *StatcheckService {
	executor := deps.Executor
	if executor == nil {
		executor = validation.NewExecutor(0)
	}
	return &StatcheckService{
		checker:   deps.Checker,
		executor:  executor,
		extractor: deps.Extractor,
		reader:    deps.Reader,
		segmenter: deps.Segmenter,
		runs:      deps.Runs,
		logger:    internal.DefaultLogger.WithComponent("StatcheckService"),
	}
}

// CheckRecords checks already extracted records
func (s *StatcheckService) CheckRecords(ctx context.Context, source string, inputs []records.TestInput) (*verdict.Report, error) {
	report, err := s.check(ctx, source, inputs)
	if err != nil {
		return nil, err
	}
	return report, s.save(ctx, report)
}

// CheckFile reads a document and checks the tests reported in it
func (s *StatcheckService) CheckFile(ctx context.Context, path string, runs int) (*verdict.Report, error) {
	if s.reader == nil {
		return nil, errors.ConfigInvalid("no document reader configured")
	}
	text, err := s.reader.ReadText(path)
	if err != nil {
		return nil, err
	}
	return s.CheckText(ctx, path, text, runs)
}

// CheckText extracts and checks the tests reported in text. With runs > 1 the
// extraction is repeated and the most frequent result is kept.
func (s *StatcheckService) CheckText(ctx context.Context, source, text string, runs int) (*verdict.Report, error) {
	if s.extractor == nil {
		return nil, core.ErrExtractorMissing
	}
	segments, err := segmentText(s.segmenter, text)
	if err != nil {
		return nil, err
	}
	s.logger.Info("checking %s: %d segments", source, len(segments))

	report, err := Consensus(ctx, runs, func(ctx context.Context) (*verdict.Report, error) {
		inputs, err := extractAll(ctx, s.logger, segments, s.extractor.ExtractTests)
		if err != nil {
			return nil, err
		}
		return s.check(ctx, source, inputs)
	})
	if err != nil {
		return nil, err
	}
	return report, s.save(ctx, report)
}

// Extract returns the records found in text without checking them
func (s *StatcheckService) Extract(ctx context.Context, text string) ([]records.TestInput, error) {
	if s.extractor == nil {
		return nil, core.ErrExtractorMissing
	}
	segments, err := segmentText(s.segmenter, text)
	if err != nil {
		return nil, err
	}
	return extractAll(ctx, s.logger, segments, s.extractor.ExtractTests)
}

func (s *StatcheckService) check(ctx context.Context, source string, inputs []records.TestInput) (*verdict.Report, error) {
	if s.checker == nil {
		return nil, errors.ConfigInvalid("no checker configured")
	}
	outcomes, err := s.executor.CheckTests(ctx, s.checker, inputs)
	if err != nil {
		return nil, err
	}

	report := newReport(verdict.KindStatcheck, source)
	report.Statcheck = outcomes
	report.Summary = SummarizeStatcheck(outcomes)
	report.Fingerprint = Fingerprint(StatcheckTable(outcomes))

	s.logger.Info("%s: %d checked, %d inconsistent (%d gross), %d rejected",
		source, report.Summary.Checked, report.Summary.Inconsistent, report.Summary.Gross, report.Summary.Rejected)
	return report, nil
}

func (s *StatcheckService) save(ctx context.Context, report *verdict.Report) error {
	if s.runs == nil {
		return nil
	}
	if err := s.runs.Save(ctx, report); err != nil {
		return errors.DatabaseError("failed to save statcheck run", err)
	}
	s.logger.Debug("saved run %s", report.ID)
	return nil
}
