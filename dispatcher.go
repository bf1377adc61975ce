package batches

import "context"

// executor drives one run over a source, handing results to emit.
type executor[T, R any] interface {
	run(ctx context.Context, src Source[T], emit sink[R]) error
}

// selectMode picks the strategy for a resolved batch size. With a single slot
// ordering is moot, so the out-of-order flag only matters above one.
func selectMode(batchSize int, outOfOrder bool) Mode {
	switch {
	case batchSize <= 1:
		return Sequential
	case outOfOrder:
		return Unordered
	default:
		return Ordered
	}
}

func newExecutor[T, R any](st *runState[T, R]) executor[T, R] {
	switch st.mode {
	case Ordered:
		return &orderedExecutor[T, R]{runState: st}
	case Unordered:
		return &unorderedExecutor[T, R]{runState: st}
	default:
		return &sequentialExecutor[T, R]{runState: st}
	}
}
