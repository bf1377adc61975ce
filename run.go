package batches

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// sink receives harvested results in output order. Returning false stops the
// run: nothing more is pulled and remaining results are discarded.
type sink[R any] func(R) bool

// runState is the bookkeeping shared by the executors of one run. It is only
// touched by the goroutine driving the run.
type runState[T, R any] struct {
	op        Operation[T, R]
	batchSize int
	mode      Mode
	observer  Observer

	// next is the input position of the next pulled item.
	next      int
	exhausted bool
	batches   int

	launched  int
	completed int
	failed    int
	abandoned int
	cancelled bool
}

// pull returns the next item and its input position. ok is false once the
// source is exhausted or ctx is done; cancellation is checked before every
// pull so no item is taken after it has been observed.
func (s *runState[T, R]) pull(ctx context.Context, src Source[T]) (item T, index int, ok bool, err error) {
	if s.exhausted || s.cancelled {
		return item, 0, false, nil
	}
	if ctx.Err() != nil {
		s.cancelled = true
		return item, 0, false, nil
	}

	item, ok, err = src.Next(ctx)
	switch {
	case err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()):
		s.cancelled = true
		return item, 0, false, nil
	case err != nil:
		s.exhausted = true
		return item, 0, false, &sourceError{err: err}
	case !ok:
		s.exhausted = true
		return item, 0, false, nil
	}

	index = s.next
	s.next++
	return item, index, true, nil
}

// record counts a harvested completion and reports whether it failed.
func (s *runState[T, R]) record(c completion[R]) bool {
	switch c.outcome {
	case succeeded:
		s.completed++
	case failed:
		s.failed++
		return true
	case abandoned:
		s.abandoned++
	}
	return false
}

func (s *runState[T, R]) beginBatch(size int) (BatchInfo, time.Time) {
	return s.startedBatch(size), time.Now()
}

// startedBatch reports a batch whose operations may already be running.
func (s *runState[T, R]) startedBatch(size int) BatchInfo {
	bi := BatchInfo{Mode: s.mode, Index: s.batches, Size: size}
	s.batches++
	s.observer.BatchStarted(bi)
	return bi
}

func (s *runState[T, R]) endBatch(bi BatchInfo, start time.Time, harvested, failures int) {
	s.observer.BatchFinished(bi, BatchSummary{
		Harvested: harvested,
		Failed:    failures,
		Duration:  time.Since(start),
	})
}

func (s *runState[T, R]) summary(d time.Duration, err error) RunSummary {
	return RunSummary{
		Launched:  s.launched,
		Completed: s.completed,
		Failed:    s.failed,
		Abandoned: s.abandoned,
		Cancelled: s.cancelled,
		Duration:  d,
		Err:       err,
	}
}

// prepare validates the call before any work starts: absent arguments first,
// then option ranges.
func prepare[T, R any](src Source[T], op Operation[T, R], opts []Option) (config, error) {
	if src == nil {
		return config{}, ErrNilSource
	}
	if op == nil {
		return config{}, ErrNilOperation
	}
	return newConfig(opts)
}

// execute resolves the batch size, picks the executor and drives it over src.
// src is closed on every exit path; a close failure is joined into the result.
func execute[T, R any](
	ctx context.Context, src Source[T], op Operation[T, R], cfg config, emit sink[R],
) (err error) {
	size, err := ResolveBatchSize(cfg.MaxConcurrency)
	if err != nil {
		_ = src.Close()
		return err
	}

	mode := selectMode(size, cfg.OutOfOrder)
	st := &runState[T, R]{
		op:        op,
		batchSize: size,
		mode:      mode,
		observer:  resolveObserver(cfg.Observers),
	}
	info := RunInfo{
		Mode:          mode,
		BatchSize:     size,
		EstimatedSize: EstimateResultSize(src, cfg.EstimatedResultSize),
	}

	st.observer.RunStarted(info)
	start := time.Now()
	defer func() {
		if cerr := src.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("%w: close: %w", ErrSource, cerr))
		}
		st.observer.RunFinished(info, st.summary(time.Since(start), err))
	}()

	return newExecutor(st).run(ctx, src, emit)
}
