package batches

import (
	"context"
	"errors"
	"fmt"
)

// outcome classifies a finished operation.
type outcome int

const (
	succeeded outcome = iota
	failed
	// abandoned: the operation gave up with the error of its already-cancelled
	// context. Not a failure and not a result.
	abandoned
)

// completion is one finished operation, stamped with the input position of
// its item.
type completion[R any] struct {
	index   int
	val     R
	err     error
	outcome outcome
}

// invoke runs op for one item on the calling goroutine. Panics are recovered
// into ErrOperationPanicked and failures are tagged with the item index.
func invoke[T, R any](ctx context.Context, op Operation[T, R], index int, item T) (c completion[R]) {
	c.index = index

	defer func() {
		if p := recover(); p != nil {
			var zero R
			c.val = zero
			c.err = newItemError(fmt.Errorf("%w: %v", ErrOperationPanicked, p), index)
			c.outcome = failed
		}
	}()

	val, err := op(ctx, item)
	switch {
	case err == nil:
		c.val, c.outcome = val, succeeded
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		c.outcome = abandoned
	default:
		c.err, c.outcome = newItemError(err, index), failed
	}
	return c
}
