package metrics

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelProvider records into OpenTelemetry instruments created from a Meter.
// Instruments that the meter refuses to create are reported to the global
// OpenTelemetry error handler and replaced with no-ops.
type OTelProvider struct {
	meter metric.Meter
}

func NewOTel(meter metric.Meter) *OTelProvider {
	return &OTelProvider{meter: meter}
}

func (p *OTelProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)
	c, err := p.meter.Int64Counter(name,
		metric.WithDescription(cfg.Description), metric.WithUnit(cfg.Unit))
	if err != nil {
		otel.Handle(err)
		return noop{}
	}
	return &otelInt64{add: c.Add, attrs: measurementAttrs(cfg)}
}

func (p *OTelProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)
	u, err := p.meter.Int64UpDownCounter(name,
		metric.WithDescription(cfg.Description), metric.WithUnit(cfg.Unit))
	if err != nil {
		otel.Handle(err)
		return noop{}
	}
	return &otelInt64{add: u.Add, attrs: measurementAttrs(cfg)}
}

func (p *OTelProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)
	h, err := p.meter.Float64Histogram(name,
		metric.WithDescription(cfg.Description), metric.WithUnit(cfg.Unit))
	if err != nil {
		otel.Handle(err)
		return noop{}
	}
	return &otelHistogram{h: h, attrs: measurementAttrs(cfg)}
}

type otelInt64 struct {
	add   func(context.Context, int64, ...metric.AddOption)
	attrs metric.MeasurementOption
}

func (o *otelInt64) Add(n int64) { o.add(context.Background(), n, o.attrs) }

type otelHistogram struct {
	h     metric.Float64Histogram
	attrs metric.MeasurementOption
}

func (o *otelHistogram) Record(v float64) { o.h.Record(context.Background(), v, o.attrs) }

func measurementAttrs(cfg InstrumentConfig) metric.MeasurementOption {
	keys := make([]string, 0, len(cfg.Attributes))
	for k := range cfg.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kvs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		kvs = append(kvs, attribute.String(k, cfg.Attributes[k]))
	}
	return metric.WithAttributes(kvs...)
}
