package batches

import "context"

// Operation is the canonical per-item operation shape. It receives the run's
// context (the cancellation signal) and one input item.
//
// Example:
//
//	op := Operation[int, string](func(ctx context.Context, x int) (string, error) {
//		return strconv.Itoa(x), nil
//	})
type Operation[T, R any] func(context.Context, T) (R, error)

// Action is the void-result sibling of Operation used by ForEach.
type Action[T any] func(context.Context, T) error

// Func adapts a context-free func(T) (R, error) to Operation[T, R].
// The cancellation signal is ignored by the adapted function.
func Func[T, R any](fn func(T) (R, error)) Operation[T, R] {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, item T) (R, error) { return fn(item) }
}

// Value adapts an infallible func(ctx, T) R to Operation[T, R].
func Value[T, R any](fn func(context.Context, T) R) Operation[T, R] {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, item T) (R, error) { return fn(ctx, item), nil }
}

// ActionFunc adapts a context-free func(T) error to Action[T].
func ActionFunc[T any](fn func(T) error) Action[T] {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, item T) error { return fn(item) }
}

// asOperation lifts an Action into an Operation producing no value.
func (a Action[T]) asOperation() Operation[T, struct{}] {
	return func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, a(ctx, item)
	}
}
