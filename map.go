package batches

import "context"

// Map applies op to every item of src with at most the configured number of
// operations in flight and returns the collected results.
//
// Semantics:
//   - Results follow input order unless WithOutOfOrder(true) is given and the
//     resolved concurrency is above one; then they follow completion order.
//   - Once the arguments are accepted, src is closed before Map returns,
//     whatever the outcome.
//   - A nil src or op fails with ErrNilArgument, an invalid option with
//     ErrInvalidArgument, before any item is pulled.
//   - A failing operation stops the run. The error carries the item's input
//     position (see ExtractItemIndex). Results collected before the failure
//     are returned alongside it.
//   - Cancelling ctx is not a failure: no further item is pulled, operations
//     already launched are awaited, and the results gathered so far are
//     returned with a nil error. Operations that return ctx's error after
//     cancellation are dropped.
func Map[T, R any](ctx context.Context, src Source[T], op Operation[T, R], opts ...Option) ([]R, error) {
	cfg, err := prepare(src, op, opts)
	if err != nil {
		return nil, err
	}

	results := make([]R, 0, EstimateResultSize(src, cfg.EstimatedResultSize))
	err = execute(ctx, src, op, cfg, func(r R) bool {
		results = append(results, r)
		return true
	})
	return results, err
}
