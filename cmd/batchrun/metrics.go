package main

import (
	"context"

	"github.com/rs/zerolog"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ygrebnov/batches"
	"github.com/ygrebnov/batches/metrics"
)

// reportedCounters are the counters logged after a run, in this order.
var reportedCounters = []string{
	batches.MetricRuns,
	batches.MetricRunErrors,
	batches.MetricRunsCancelled,
	batches.MetricOperationsLaunched,
	batches.MetricOperationsDone,
	batches.MetricOperationsFailed,
	batches.MetricOperationsDropped,
}

// metricsBackend is a provider plus a way to log what it recorded.
type metricsBackend struct {
	provider metrics.Provider
	report   func(context.Context, zerolog.Logger) error
	shutdown func(context.Context) error
}

func newMetricsBackend(kind string) *metricsBackend {
	if kind == "otel" {
		return newOTelBackend()
	}
	return newBasicBackend()
}

func newBasicBackend() *metricsBackend {
	p := metrics.NewBasicProvider()
	return &metricsBackend{
		provider: p,
		report: func(_ context.Context, log zerolog.Logger) error {
			d := zerolog.Dict()
			for _, name := range reportedCounters {
				d = d.Int64(name, p.CounterValue(name))
			}
			ev := log.Info().Str("backend", "basic").Dict("counters", d)
			if h, ok := p.HistogramSnapshot(batches.MetricBatchDuration); ok {
				ev = ev.Int64("batches", h.Count).
					Float64("batch_mean_seconds", h.Mean).
					Float64("batch_max_seconds", h.Max)
			}
			ev.Msg("metrics")
			return nil
		},
		shutdown: func(context.Context) error { return nil },
	}
}

// newOTelBackend records through the OpenTelemetry SDK and reads the data back
// with a manual reader; nothing is exported.
func newOTelBackend() *metricsBackend {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return &metricsBackend{
		provider: metrics.NewOTel(mp.Meter("github.com/ygrebnov/batches/cmd/batchrun")),
		report: func(ctx context.Context, log zerolog.Logger) error {
			var rm metricdata.ResourceMetrics
			if err := reader.Collect(ctx, &rm); err != nil {
				return err
			}
			d := zerolog.Dict()
			for _, sm := range rm.ScopeMetrics {
				for _, m := range sm.Metrics {
					switch data := m.Data.(type) {
					case metricdata.Sum[int64]:
						var total int64
						for _, dp := range data.DataPoints {
							total += dp.Value
						}
						d = d.Int64(m.Name, total)
					case metricdata.Histogram[float64]:
						var count uint64
						for _, dp := range data.DataPoints {
							count += dp.Count
						}
						d = d.Uint64(m.Name+"_count", count)
					}
				}
			}
			log.Info().Str("backend", "otel").Dict("instruments", d).Msg("metrics")
			return nil
		},
		shutdown: mp.Shutdown,
	}
}
