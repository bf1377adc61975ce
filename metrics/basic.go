package metrics

import (
	"math"
	"sync"
	"sync/atomic"
)

// BasicProvider keeps instruments in memory so their values can be read back.
// It suits tests, examples and command-line tools. Instruments are created on
// first use of a name and shared afterwards.
type BasicProvider struct {
	counters   *registry[*BasicCounter]
	updowns    *registry[*BasicUpDownCounter]
	histograms *registry[*BasicHistogram]
}

func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   newRegistry(func() *BasicCounter { return &BasicCounter{} }),
		updowns:    newRegistry(func() *BasicUpDownCounter { return &BasicUpDownCounter{} }),
		histograms: newRegistry(func() *BasicHistogram { return &BasicHistogram{} }),
	}
}

func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	return p.counters.get(name, opts)
}

func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	return p.updowns.get(name, opts)
}

func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	return p.histograms.get(name, opts)
}

// CounterValue returns the value of the named counter, or 0 if it was never created.
func (p *BasicProvider) CounterValue(name string) int64 {
	if c, ok := p.counters.lookup(name); ok {
		return c.Snapshot()
	}
	return 0
}

// UpDownValue returns the value of the named up/down counter, or 0.
func (p *BasicProvider) UpDownValue(name string) int64 {
	if u, ok := p.updowns.lookup(name); ok {
		return u.Snapshot()
	}
	return 0
}

// HistogramSnapshot returns the state of the named histogram; ok is false if
// it was never created.
func (p *BasicProvider) HistogramSnapshot(name string) (HistSnapshot, bool) {
	if h, ok := p.histograms.lookup(name); ok {
		return h.Snapshot(), true
	}
	return HistSnapshot{}, false
}

// Config returns the metadata the named instrument was created with.
func (p *BasicProvider) Config(name string) (InstrumentConfig, bool) {
	for _, lookup := range []func(string) (InstrumentConfig, bool){
		p.counters.config, p.updowns.config, p.histograms.config,
	} {
		if cfg, ok := lookup(name); ok {
			return cfg, true
		}
	}
	return InstrumentConfig{}, false
}

// registry creates instruments of one kind by name, once.
type registry[I any] struct {
	mu    sync.RWMutex
	newFn func() I
	items map[string]I
	meta  map[string]InstrumentConfig
}

func newRegistry[I any](newFn func() I) *registry[I] {
	return &registry[I]{
		newFn: newFn,
		items: make(map[string]I),
		meta:  make(map[string]InstrumentConfig),
	}
}

func (r *registry[I]) get(name string, opts []InstrumentOption) I {
	if it, ok := r.lookup(name); ok {
		return it
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[name]; ok {
		return it
	}
	it := r.newFn()
	r.items[name] = it
	r.meta[name] = applyOptions(opts)
	return it
}

func (r *registry[I]) lookup(name string) (I, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[name]
	return it, ok
}

func (r *registry[I]) config(name string) (InstrumentConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.meta[name]
	return cfg, ok
}

// BasicCounter is a concurrency-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

func (c *BasicCounter) Add(n int64)     { c.val.Add(n) }
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a concurrency-safe up/down counter.
type BasicUpDownCounter struct {
	val atomic.Int64
}

func (u *BasicUpDownCounter) Add(n int64)     { u.val.Add(n) }
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max. It keeps no buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		h.min, h.max = v, v
	} else {
		h.min = math.Min(h.min, v)
		h.max = math.Max(h.max, v)
	}
	h.count++
	h.sum += v
}

// HistSnapshot is a point-in-time copy of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	h.mu.Unlock()
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}
