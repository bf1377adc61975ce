// Package metrics defines the small instrument surface the batch executor
// records into, with an in-memory provider, a no-op provider and an
// OpenTelemetry adapter.
package metrics

// Provider constructs named instruments. Asking twice for the same name and
// kind returns instruments that record into the same series.
// Implementations must be safe for concurrent use.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records a value that moves both ways, such as operations in flight.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records a distribution of measurements, such as durations in seconds.
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig is advisory metadata attached to an instrument.
type InstrumentConfig struct {
	Description string
	Unit        string
	// Attributes are static key-value pairs for the instrument. Keep cardinality bounded.
	Attributes map[string]string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets the UCUM unit, e.g. "s" or "{operation}".
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

// WithAttributes copies attrs onto the instrument.
func WithAttributes(attrs map[string]string) InstrumentOption {
	return func(c *InstrumentConfig) {
		if len(attrs) == 0 {
			return
		}
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

func applyOptions(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
