package batches

import (
	"context"
	"iter"
	"sync/atomic"
)

// Stream is the lazy form of Map. Arguments and options are validated
// immediately; nothing is pulled from src until the returned sequence is ranged.
//
// The sequence yields (result, nil) for every result in the order Map would
// collect it, each as soon as its batch (ordered mode) or harvest (unordered
// and sequential modes) is done. If the run fails, a final (zero, err) pair is
// yielded. Breaking out of the range stops pulling, lets operations already in
// flight finish (in unordered mode they are also told to give up via their
// context), and closes src.
//
// The sequence is single-use: ranging it a second time yields nothing.
func Stream[T, R any](
	ctx context.Context, src Source[T], op Operation[T, R], opts ...Option,
) (iter.Seq2[R, error], error) {
	cfg, err := prepare(src, op, opts)
	if err != nil {
		return nil, err
	}

	var used atomic.Bool
	return func(yield func(R, error) bool) {
		if !used.CompareAndSwap(false, true) {
			return
		}

		open := true
		err := execute(ctx, src, op, cfg, func(r R) bool {
			open = yield(r, nil)
			return open
		})
		if err != nil && open {
			var zero R
			yield(zero, err)
		}
	}, nil
}
