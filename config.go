package batches

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/batches/metrics"
)

// config holds the settings of a single run.
type config struct {
	// MaxConcurrency is the requested number of operations in flight.
	// Zero selects runtime.GOMAXPROCS(0).
	// Default: 0
	MaxConcurrency int

	// OutOfOrder lets results follow completion order instead of input order.
	// Ignored when the resolved batch size is 1.
	// Default: false
	OutOfOrder bool

	// EstimatedResultSize is the result buffer capacity used when the source
	// cannot report its length.
	// Default: 0
	EstimatedResultSize int

	// Observers receive run and batch callbacks, in order.
	Observers []Observer
}

func defaultConfig() config {
	return config{
		MaxConcurrency:      0,
		OutOfOrder:          false,
		EstimatedResultSize: 0,
	}
}

// validateConfig re-checks the ranges enforced by the options, for configs
// assembled without them.
func validateConfig(cfg *config) error {
	if cfg.MaxConcurrency < 0 {
		return invalidArgument("max_concurrency", cfg.MaxConcurrency)
	}
	if cfg.EstimatedResultSize < 0 {
		return invalidArgument("estimated_result_size", cfg.EstimatedResultSize)
	}
	return nil
}

func newConfig(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func invalidArgument(key string, v int) error {
	return errorc.With(
		ErrInvalidArgument,
		errorc.String(key, strconv.Itoa(v)),
		errorc.String("reason", "must be 0 or a positive integer"),
	)
}

// Option configures a run of Map, ForEach or Stream.
// An option returns an error on invalid input; the entry point then fails
// before any work starts.
type Option func(*config) error

// WithMaxConcurrency caps the number of operations in flight. Zero (the
// default) uses runtime.GOMAXPROCS(0); one runs items sequentially.
func WithMaxConcurrency(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return invalidArgument("max_concurrency", n)
		}
		cfg.MaxConcurrency = n
		return nil
	}
}

// WithOutOfOrder lets results be collected in completion order. Slow items
// then no longer hold back the rest of their batch.
func WithOutOfOrder(enabled bool) Option {
	return func(cfg *config) error { cfg.OutOfOrder = enabled; return nil }
}

// WithEstimatedResultSize sets the result buffer capacity for sources that
// cannot report their length.
func WithEstimatedResultSize(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return invalidArgument("estimated_result_size", n)
		}
		cfg.EstimatedResultSize = n
		return nil
	}
}

// WithObserver registers an observer for run and batch callbacks.
// It may be given more than once.
func WithObserver(o Observer) Option {
	return func(cfg *config) error {
		if o == nil {
			return errorc.With(ErrNilArgument, errorc.String("option", "WithObserver"))
		}
		cfg.Observers = append(cfg.Observers, o)
		return nil
	}
}

// WithLogger logs run and batch events to l.
// Batch events are logged at debug level, run completion at info (error when the run failed).
func WithLogger(l zerolog.Logger) Option {
	return WithObserver(newLogObserver(l))
}

// WithMetrics records run and operation metrics with p.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrNilArgument, errorc.String("option", "WithMetrics"))
		}
		cfg.Observers = append(cfg.Observers, newMetricsObserver(p))
		return nil
	}
}
