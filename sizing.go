package batches

import "runtime"

// ResolveBatchSize turns a requested maximum concurrency into the batch size
// an executor runs with. Zero selects the host's available parallelism
// (runtime.GOMAXPROCS); negative values are rejected with ErrInvalidArgument.
func ResolveBatchSize(maxConcurrency int) (int, error) {
	switch {
	case maxConcurrency < 0:
		return 0, invalidArgument("max_concurrency", maxConcurrency)
	case maxConcurrency == 0:
		return runtime.GOMAXPROCS(0), nil
	default:
		return maxConcurrency, nil
	}
}

// EstimateResultSize returns a capacity hint for the result buffer of a run
// over src. A Sized source reports its exact length; any other source falls
// back to the caller's estimate. A wrong hint costs a reallocation, never
// correctness.
func EstimateResultSize[T any](src Source[T], fallback int) int {
	if src == nil {
		return 0
	}
	if s, ok := src.(Sized); ok {
		return max(s.Len(), 0)
	}
	return max(fallback, 0)
}
