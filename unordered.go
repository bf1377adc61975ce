package batches

import (
	"context"
	"errors"
)

// unorderedExecutor keeps a window of at most batchSize operations in flight.
// Each operation delivers its index-stamped completion to a queue buffered to
// the window size, so no operation ever blocks on delivery. After waiting for
// any completion the executor harvests every completion already queued, emits
// them in harvest order and tops the window up again from the source.
//
// Output order is completion order as observed through the queue; ties inside
// one harvest are not ordered by completion time. Callers must treat the order
// as non-deterministic.
type unorderedExecutor[T, R any] struct {
	*runState[T, R]
}

func (e *unorderedExecutor[T, R]) run(ctx context.Context, src Source[T], emit sink[R]) error {
	// opCtx is cancelled when the run returns: after a failure the operations
	// still in flight are told to give up instead of being awaited.
	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	op := e.op
	done := make(chan completion[R], e.batchSize)
	inflight := 0
	stopped := false
	var pullErr error

	for {
		// Top up.
		for !stopped && pullErr == nil && inflight < e.batchSize {
			item, index, ok, err := e.pull(ctx, src)
			if err != nil {
				pullErr = err
				break
			}
			if !ok {
				break
			}
			inflight++
			e.launched++
			go func() { done <- invoke(opCtx, op, index, item) }()
		}
		if inflight == 0 {
			return pullErr
		}

		bi, start := e.beginBatch(inflight)

		// Await any, then harvest whatever else has completed meanwhile.
		var (
			firstErr  error
			harvested int
			failures  int
		)
		c := <-done
	harvest:
		for {
			inflight--
			harvested++
			if e.record(c) {
				failures++
				if firstErr == nil {
					firstErr = c.err
				}
			} else if !stopped && c.outcome == succeeded && !emit(c.val) {
				stopped = true
				cancel()
			}

			select {
			case c = <-done:
			default:
				break harvest
			}
		}
		e.endBatch(bi, start, harvested, failures)

		if firstErr != nil {
			if pullErr != nil {
				return errors.Join(firstErr, pullErr)
			}
			return firstErr
		}
	}
}
