package validation

import (
	"context"
	"fmt"
	"runtime"

	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal"
	"gostatcheck/internal/grim"
	"gostatcheck/internal/records"
	"gostatcheck/internal/statcheck"

	"golang.org/x/sync/errgroup"
)

// Executor fans record checks out over a bounded number of goroutines.
// Outcomes are written by index, so they come back in input order.
type Executor struct {
	workers int
	logger  *internal.Logger
}

// NewExecutor creates an executor; workers <= 0 means one per CPU
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Executor{
		workers: workers,
		logger:  internal.DefaultLogger.WithComponent("Executor"),
	}
}

// Workers returns the concurrency limit
func (e *Executor) Workers() int {
	return e.workers
}

// CheckTests validates and checks every input. A rejected record is reported
// on its own outcome and never stops the batch. Once ctx is done no further
// records are scheduled; those get ctx.Err() as their failure.
func (e *Executor) CheckTests(ctx context.Context, checker *statcheck.Checker, inputs []records.TestInput) ([]verdict.StatcheckOutcome, error) {
	outcomes := make([]verdict.StatcheckOutcome, len(inputs))
	err := e.forEach(ctx, len(inputs), func(i int) {
		outcomes[i] = checkTest(i, checker, inputs[i])
	}, func(i int, err error) {
		outcomes[i] = verdict.StatcheckOutcome{Index: i}
		outcomes[i].Fail(err)
	})
	return outcomes, err
}

// CheckMeans is CheckTests for GRIM inputs
func (e *Executor) CheckMeans(ctx context.Context, inputs []records.MeanInput) ([]verdict.GrimOutcome, error) {
	outcomes := make([]verdict.GrimOutcome, len(inputs))
	err := e.forEach(ctx, len(inputs), func(i int) {
		outcomes[i] = checkMean(i, inputs[i])
	}, func(i int, err error) {
		outcomes[i] = verdict.GrimOutcome{Index: i}
		outcomes[i].Fail(err)
	})
	return outcomes, err
}

func (e *Executor) forEach(ctx context.Context, n int, work func(i int), skipped func(i int, err error)) error {
	var g errgroup.Group
	g.SetLimit(e.workers)

	scheduled := 0
	for ; scheduled < n; scheduled++ {
		if ctx.Err() != nil {
			break
		}
		i := scheduled
		g.Go(func() error {
			work(i)
			return nil
		})
	}
	_ = g.Wait()

	if scheduled < n {
		err := ctx.Err()
		e.logger.Warn("stopped after %d of %d records: %v", scheduled, n, err)
		for i := scheduled; i < n; i++ {
			skipped(i, err)
		}
		return err
	}
	e.logger.Debug("checked %d records with %d workers", n, e.workers)
	return nil
}

func checkTest(i int, checker *statcheck.Checker, in records.TestInput) (out verdict.StatcheckOutcome) {
	out.Index = i
	defer recoverInto(i, func(err error) { out.Fail(err) })

	rec, err := in.ToRecord()
	if err != nil {
		out.Fail(&core.RecordError{Index: i, Err: err})
		return out
	}
	out.Record = &rec

	v, err := checker.Check(rec)
	if err != nil {
		out.Fail(&core.RecordError{Index: i, Err: err})
		return out
	}
	out.Verdict = &v
	return out
}

func checkMean(i int, in records.MeanInput) (out verdict.GrimOutcome) {
	out.Index = i
	defer recoverInto(i, func(err error) { out.Fail(err) })

	m, err := in.ToRecord()
	if err != nil {
		out.Fail(&core.RecordError{Index: i, Err: err})
		return out
	}
	out.Mean = &m

	v, err := grim.Check(m)
	if err != nil {
		out.Fail(&core.RecordError{Index: i, Err: err})
		return out
	}
	out.Verdict = &v
	return out
}

// recoverInto turns a panic in one record into that record's failure
func recoverInto(i int, fail func(error)) {
	if r := recover(); r != nil {
		fail(&core.RecordError{Index: i, Err: fmt.Errorf("panic: %v", r)})
	}
}
