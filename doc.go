// Package batches applies an operation to every item of a source with bounded
// parallelism and collects the results.
//
// Entry points
//   - Map(ctx, src, op, opts...): collects results into a slice.
//   - ForEach(ctx, src, action, opts...): runs an action per item, no results.
//   - Stream(ctx, src, op, opts...): lazy iter.Seq2 of results, yielded as
//     batches finish.
//
// Sources
// A Source is pulled one item at a time from the goroutine driving the run and
// closed when the run ends. FromSlice, FromSeq, FromChan and FromFunc cover the
// common producers. A source implementing Sized lets Map pre-size its result
// slice (see EstimateResultSize).
//
// Modes
// The batch size is resolved from WithMaxConcurrency (see ResolveBatchSize) and
// selects one of three strategies:
//   - Sequential (batch size 1): pull, invoke, await, emit.
//   - Ordered (default): launch a batch, join it, emit its results in input
//     order, repeat. A slow item holds back its whole batch.
//   - Unordered (WithOutOfOrder(true)): keep a sliding window of operations in
//     flight, refill it as operations complete, emit in completion order.
//
// Errors and cancellation
//   - Invalid calls fail before any work with ErrNilArgument or ErrInvalidArgument.
//   - The first failing operation ends the run. Its error carries the item's
//     input position (ExtractItemIndex); panics surface as ErrOperationPanicked.
//   - Source failures are reported as ErrSource.
//   - Cancelling ctx is not an error: nothing more is pulled, operations
//     already launched are awaited and the results gathered so far are returned.
//
// Defaults
//   - MaxConcurrency: 0 (runtime.GOMAXPROCS)
//   - OutOfOrder: false
//   - EstimatedResultSize: 0
//
// Observability
// WithObserver receives run and batch callbacks. WithLogger logs them with
// zerolog and WithMetrics records them through a metrics.Provider.
package batches
