package batches

import "context"

// sequentialExecutor runs one operation at a time: pull, invoke, await, emit.
// Each item is reported to the observer as a batch of one.
type sequentialExecutor[T, R any] struct {
	*runState[T, R]
}

func (e *sequentialExecutor[T, R]) run(ctx context.Context, src Source[T], emit sink[R]) error {
	for {
		item, index, ok, err := e.pull(ctx, src)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		bi, start := e.beginBatch(1)
		e.launched++
		c := invoke(ctx, e.op, index, item)
		isFailure := e.record(c)
		e.endBatch(bi, start, 1, btoi(isFailure))

		switch {
		case isFailure:
			return c.err
		case c.outcome == succeeded && !emit(c.val):
			return nil
		}
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
