package batches

import "github.com/ygrebnov/batches/metrics"

// Instrument names recorded by WithMetrics.
const (
	MetricRuns               = "batches_runs_total"
	MetricRunErrors          = "batches_run_errors_total"
	MetricRunsCancelled      = "batches_runs_cancelled_total"
	MetricOperationsLaunched = "batches_operations_launched_total"
	MetricOperationsDone     = "batches_operations_completed_total"
	MetricOperationsFailed   = "batches_operations_failed_total"
	MetricOperationsDropped  = "batches_operations_abandoned_total"
	MetricInflight           = "batches_inflight_operations"
	MetricBatchDuration      = "batches_batch_duration_seconds"
	MetricRunDuration        = "batches_run_duration_seconds"
)

// metricsObserver maps lifecycle callbacks onto metrics instruments.
// Operation counters are added once per run from its summary. The in-flight
// gauge rises by a batch's size when it starts and falls back when it ends.
type metricsObserver struct {
	runs          metrics.Counter
	runErrors     metrics.Counter
	runsCancelled metrics.Counter
	launched      metrics.Counter
	completed     metrics.Counter
	failed        metrics.Counter
	abandoned     metrics.Counter
	inflight      metrics.UpDownCounter
	batchDuration metrics.Histogram
	runDuration   metrics.Histogram
}

func newMetricsObserver(p metrics.Provider) *metricsObserver {
	seconds := metrics.WithUnit("s")
	ops := metrics.WithUnit("{operation}")
	return &metricsObserver{
		runs:          p.Counter(MetricRuns, metrics.WithDescription("Runs finished.")),
		runErrors:     p.Counter(MetricRunErrors, metrics.WithDescription("Runs finished with an error.")),
		runsCancelled: p.Counter(MetricRunsCancelled, metrics.WithDescription("Runs stopped by cancellation.")),
		launched:      p.Counter(MetricOperationsLaunched, ops, metrics.WithDescription("Operations started.")),
		completed:     p.Counter(MetricOperationsDone, ops, metrics.WithDescription("Operations that returned a result.")),
		failed:        p.Counter(MetricOperationsFailed, ops, metrics.WithDescription("Operations that failed or panicked.")),
		abandoned: p.Counter(MetricOperationsDropped, ops,
			metrics.WithDescription("Operations that gave up on a cancelled context.")),
		inflight:      p.UpDownCounter(MetricInflight, ops, metrics.WithDescription("Operations awaited by open batches.")),
		batchDuration: p.Histogram(MetricBatchDuration, seconds, metrics.WithDescription("Batch wall time.")),
		runDuration:   p.Histogram(MetricRunDuration, seconds, metrics.WithDescription("Run wall time.")),
	}
}

func (o *metricsObserver) RunStarted(RunInfo) {}

func (o *metricsObserver) RunFinished(_ RunInfo, rs RunSummary) {
	o.runs.Add(1)
	if rs.Err != nil {
		o.runErrors.Add(1)
	}
	if rs.Cancelled {
		o.runsCancelled.Add(1)
	}
	o.launched.Add(int64(rs.Launched))
	o.completed.Add(int64(rs.Completed))
	o.failed.Add(int64(rs.Failed))
	o.abandoned.Add(int64(rs.Abandoned))
	o.runDuration.Record(rs.Duration.Seconds())
}

func (o *metricsObserver) BatchStarted(bi BatchInfo) {
	o.inflight.Add(int64(bi.Size))
}

func (o *metricsObserver) BatchFinished(bi BatchInfo, bs BatchSummary) {
	o.inflight.Add(-int64(bi.Size))
	o.batchDuration.Record(bs.Duration.Seconds())
}
