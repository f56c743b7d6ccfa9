package app

import (
	"context"

	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal"
	"gostatcheck/internal/errors"
	"gostatcheck/internal/records"
	"gostatcheck/internal/validation"
	"gostatcheck/ports"
)

// GrimService runs the GRIM pipeline over reported means
type GrimService struct {
	executor  *validation.Executor
	extractor ports.MeanExtractor
	reader    ports.DocumentReader
	segmenter Segmenter
	runs      ports.RunRepository
	logger    *internal.Logger
}

// GrimDeps wires a GrimService; everything but the executor is optional
type GrimDeps struct {
	Executor  *validation.Executor
	Extractor ports.MeanExtractor
	Reader    ports.DocumentReader
	Segmenter Segmenter
	Runs      ports.RunRepository
}

// NewGrimService creates a GRIM service
func NewGrimService(deps GrimDeps) *GrimService {
	executor := deps.Executor
	if executor == nil {
		executor = validation.NewExecutor(0)
	}
	return &GrimService{
		executor:  executor,
		extractor: deps.Extractor,
		reader:    deps.Reader,
		segmenter: deps.Segmenter,
		runs:      deps.Runs,
		logger:    internal.DefaultLogger.WithComponent("GrimService"),
	}
}

// CheckRecords checks already extracted means
func (s *GrimService) CheckRecords(ctx context.Context, source string, inputs []records.MeanInput) (*verdict.Report, error) {
	report, err := s.check(ctx, source, inputs)
	if err != nil {
		return nil, err
	}
	return report, s.save(ctx, report)
}

// CheckFile reads a document and checks the means reported in it
func (s *GrimService) CheckFile(ctx context.Context, path string, runs int) (*verdict.Report, error) {
	if s.reader == nil {
		return nil, errors.ConfigInvalid("no document reader configured")
	}
	text, err := s.reader.ReadText(path)
	if err != nil {
		return nil, err
	}
	return s.CheckText(ctx, path, text, runs)
}

// CheckText extracts and checks the means reported in text
func (s *GrimService) CheckText(ctx context.Context, source, text string, runs int) (*verdict.Report, error) {
	if s.extractor == nil {
		return nil, core.ErrExtractorMissing
	}
	segments, err := segmentText(s.segmenter, text)
	if err != nil {
		return nil, err
	}
	s.logger.Info("checking %s: %d segments", source, len(segments))

	report, err := Consensus(ctx, runs, func(ctx context.Context) (*verdict.Report, error) {
		inputs, err := extractAll(ctx, s.logger, segments, s.extractor.ExtractMeans)
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

func (s *GrimService) check(ctx context.Context, source string, inputs []records.MeanInput) (*verdict.Report, error) {
	outcomes, err := s.executor.CheckMeans(ctx, inputs)
	if err != nil {
		return nil, err
	}

	report := newReport(verdict.KindGRIM, source)
	report.GRIM = outcomes
	report.Summary = SummarizeGrim(outcomes)
	report.Fingerprint = Fingerprint(GrimTable(outcomes, DefaultGrimTableOptions))

	s.logger.Info("%s: %d checked, %d inconsistent, %d not applicable, %d rejected",
		source, report.Summary.Checked, report.Summary.Inconsistent, report.Summary.NotApplicable, report.Summary.Rejected)
	return report, nil
}

func (s *GrimService) save(ctx context.Context, report *verdict.Report) error {
	if s.runs == nil {
		return nil
	}
	if err := s.runs.Save(ctx, report); err != nil {
		return errors.DatabaseError("failed to save GRIM run", err)
	}
	return nil
}
