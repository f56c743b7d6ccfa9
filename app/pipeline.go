package app

import (
	"context"
	"fmt"

	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal"
	"gostatcheck/internal/config"
	"gostatcheck/internal/errors"
)

// Segmenter splits document text into the windows handed to an extractor
type Segmenter func(text string) ([]string, error)

// ValidateRuns checks a requested number of repeated runs; 0 means one
func ValidateRuns(runs int) (int, error) {
	if runs == 0 {
		return 1, nil
	}
	if runs < 1 || runs > config.MaxRuns {
		return 0, errors.InvalidInput(fmt.Sprintf("runs must be between 1 and %d, got %d", config.MaxRuns, runs))
	}
	return runs, nil
}

// extractAll runs extract over every segment and concatenates the results.
// A failing segment is logged and skipped; only when every segment fails is
// the last error returned.
func extractAll[T comparable](ctx context.Context, logger *internal.Logger, segments []string, extract func(context.Context, string) ([]T, error)) ([]T, error) {
	var (
		all     []T
		failed  int
		lastErr error
	)
	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := extract(ctx, segment)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("segment %d/%d: extraction failed: %v", i+1, len(segments), err)
			failed++
			lastErr = err
			continue
		}
		logger.Debug("segment %d/%d: %d records", i+1, len(segments), len(found))
		all = append(all, found...)
	}
	if failed > 0 && failed == len(segments) {
		return nil, errors.ExternalServiceError("llm", lastErr)
	}
	return dropConsecutiveDuplicates(all), nil
}

// dropConsecutiveDuplicates removes a record equal to the one before it;
// overlapping segments report the same result twice in a row
func dropConsecutiveDuplicates[T comparable](items []T) []T {
	if len(items) < 2 {
		return items
	}
	out := items[:1]
	for _, item := range items[1:] {
		if item != out[len(out)-1] {
			out = append(out, item)
		}
	}
	return out
}

// segmentText applies segmenter and rejects text without words
func segmentText(segmenter Segmenter, text string) ([]string, error) {
	if segmenter == nil {
		return nil, errors.ConfigInvalid("no segmenter configured")
	}
	segments, err := segmenter(text)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, core.ErrNoSegments
	}
	return segments, nil
}

// newReport stamps a fresh report
func newReport(kind verdict.Kind, source string) *verdict.Report {
	return &verdict.Report{
		ID:        core.NewRunID(),
		Kind:      kind,
		Source:    source,
		CreatedAt: core.Now(),
		Frequency: 1,
		Runs:      1,
	}
}
