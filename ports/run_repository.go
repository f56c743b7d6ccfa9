package ports

import (
	"context"

	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
)

// RunRepository stores finished reports
type RunRepository interface {
	Save(ctx context.Context, report *verdict.Report) error
	Get(ctx context.Context, id core.RunID) (*verdict.Report, error)
	List(ctx context.Context, limit, offset int) ([]verdict.RunSummary, error)
}
