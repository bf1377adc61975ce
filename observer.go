package batches

import "time"

// Mode is the execution strategy selected for a run.
type Mode int

const (
	// Sequential runs one operation at a time (batch size 1).
	Sequential Mode = iota + 1
	// Ordered launches whole batches and joins each before the next; output
	// follows input order.
	Ordered
	// Unordered keeps a sliding window of in-flight operations topped up as
	// they complete; output follows completion order.
	Unordered
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Ordered:
		return "ordered"
	case Unordered:
		return "unordered"
	default:
		return "unknown"
	}
}

// RunInfo describes a run at its start.
type RunInfo struct {
	Mode          Mode
	BatchSize     int
	EstimatedSize int
}

// RunSummary describes a finished run.
type RunSummary struct {
	// Launched counts operations started; Completed those that returned a
	// result, Failed those that returned an error or panicked, Abandoned those
	// that returned the cancelled context's error.
	Launched  int
	Completed int
	Failed    int
	Abandoned int
	// Cancelled is true when the context stopped the run before the source
	// was exhausted.
	Cancelled bool
	Duration  time.Duration
	Err       error
}

// BatchInfo describes a batch: a whole ordered batch, one item of a sequential
// run, or one await-any/harvest round of an unordered run (Size is then the
// number of operations in flight when the round started).
type BatchInfo struct {
	Mode  Mode
	Index int
	Size  int
}

// BatchSummary describes a finished batch. Harvested counts the operations
// collected by the batch, successful or not.
type BatchSummary struct {
	Harvested int
	Failed    int
	Duration  time.Duration
}

// Observer receives run and batch lifecycle callbacks. Callbacks are made from
// the goroutine driving the run, synchronously; a slow observer slows the run.
// One observer may serve concurrent runs and must be safe for concurrent use.
type Observer interface {
	RunStarted(RunInfo)
	RunFinished(RunInfo, RunSummary)
	BatchStarted(BatchInfo)
	BatchFinished(BatchInfo, BatchSummary)
}

// NoopObserver ignores every callback. It is the default observer.
type NoopObserver struct{}

func (NoopObserver) RunStarted(RunInfo)                    {}
func (NoopObserver) RunFinished(RunInfo, RunSummary)       {}
func (NoopObserver) BatchStarted(BatchInfo)                {}
func (NoopObserver) BatchFinished(BatchInfo, BatchSummary) {}

// observers fans callbacks out in registration order.
type observers []Observer

func (o observers) RunStarted(ri RunInfo) {
	for _, ob := range o {
		ob.RunStarted(ri)
	}
}

func (o observers) RunFinished(ri RunInfo, rs RunSummary) {
	for _, ob := range o {
		ob.RunFinished(ri, rs)
	}
}

func (o observers) BatchStarted(bi BatchInfo) {
	for _, ob := range o {
		ob.BatchStarted(bi)
	}
}

func (o observers) BatchFinished(bi BatchInfo, bs BatchSummary) {
	for _, ob := range o {
		ob.BatchFinished(bi, bs)
	}
}

// resolveObserver collapses the configured observers into one value.
func resolveObserver(list []Observer) Observer {
	switch len(list) {
	case 0:
		return NoopObserver{}
	case 1:
		return list[0]
	default:
		return observers(list)
	}
}
