package batches

import "context"

// ForEach applies op to every item of src with at most the configured number
// of operations in flight. It follows the semantics of Map, without results:
// it returns nil when every operation succeeded or the run was cancelled, and
// the failure otherwise.
func ForEach[T any](ctx context.Context, src Source[T], op Action[T], opts ...Option) error {
	if op == nil {
		if src == nil {
			return ErrNilSource
		}
		return ErrNilOperation
	}
	lifted := op.asOperation()
	cfg, err := prepare(src, lifted, opts)
	if err != nil {
		return err
	}
	return execute(ctx, src, lifted, cfg, func(struct{}) bool { return true })
}
