package ports

import (
	"context"

	"gostatcheck/internal/records"
)

// TestExtractor pulls reported NHST results out of one text segment.
// A segment without results yields an empty slice and no error.
type TestExtractor interface {
	ExtractTests(ctx context.Context, segment string) ([]records.TestInput, error)
}

// MeanExtractor pulls reported (mean, n) pairs of integer data out of one text segment
type MeanExtractor interface {
	ExtractMeans(ctx context.Context, segment string) ([]records.MeanInput, error)
}
