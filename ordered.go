package batches

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// orderedExecutor fills a batch of up to batchSize items, launching each
// operation as its item is pulled, joins the whole batch, then emits the
// results in pull order. The next batch starts only after the previous one has
// been fully drained, so at most batchSize operations are ever in flight.
type orderedExecutor[T, R any] struct {
	*runState[T, R]
}

func (e *orderedExecutor[T, R]) run(ctx context.Context, src Source[T], emit sink[R]) error {
	op := e.op
	slots := make([]completion[R], e.batchSize)

	for {
		var (
			g       errgroup.Group
			n       int
			pullErr error
			began   = time.Now()
		)

		// Fill.
		for n < e.batchSize {
			item, index, ok, err := e.pull(ctx, src)
			if err != nil {
				pullErr = err
				break
			}
			if !ok {
				break
			}
			slot := &slots[n]
			n++
			e.launched++
			g.Go(func() error {
				*slot = invoke(ctx, op, index, item)
				return slot.err
			})
		}
		if n == 0 {
			return pullErr
		}
		bi := e.startedBatch(n)

		// Join. The first error returned by Wait only tells whether any slot
		// failed; every slot is inspected below.
		joinErr := g.Wait()

		// Drain.
		batch := slots[:n]
		var errs []error
		stopped := false
		for i := range batch {
			if e.record(batch[i]) {
				errs = append(errs, batch[i].err)
				continue
			}
			if !stopped && batch[i].outcome == succeeded && !emit(batch[i].val) {
				stopped = true
			}
		}
		clear(batch)
		e.endBatch(bi, began, n, len(errs))

		switch {
		case joinErr != nil || pullErr != nil:
			return errors.Join(append(errs, pullErr)...)
		case stopped:
			return nil
		}
	}
}
