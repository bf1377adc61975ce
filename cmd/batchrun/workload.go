package main

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"time"
)

var errInjected = errors.New("injected failure")

// workload is a synthetic job: every item sleeps for a random latency and
// returns it. One item may be configured to fail.
type workload struct {
	items      int
	minLatency time.Duration
	maxLatency time.Duration
	failAt     int
	// sleep is replaced in tests.
	sleep func(context.Context, time.Duration) error
}

func newWorkload(s Settings) *workload {
	return &workload{
		items:      s.Items,
		minLatency: s.MinLatency,
		maxLatency: s.MaxLatency,
		failAt:     s.FailAt,
		sleep:      sleepCtx,
	}
}

// positions yields 0..items-1 lazily.
func (w *workload) positions() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range w.items {
			if !yield(i) {
				return
			}
		}
	}
}

func (w *workload) latency() time.Duration {
	spread := w.maxLatency - w.minLatency
	if spread <= 0 {
		return w.minLatency
	}
	return w.minLatency + rand.N(spread+1)
}

func (w *workload) process(ctx context.Context, i int) (time.Duration, error) {
	d := w.latency()
	if err := w.sleep(ctx, d); err != nil {
		return 0, err
	}
	if i == w.failAt {
		return 0, fmt.Errorf("item %d: %w", i, errInjected)
	}
	return d, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
