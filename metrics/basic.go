package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider is a simple in-memory implementation of Provider, suitable
// for tests and lightweight applications. Instruments are created on demand
// by name and reused for the same name; options are advisory and stored for
// introspection.
type BasicProvider struct {
	mu         sync.RWMutex
	counters   map[string]*BasicCounter
	updowns    map[string]*BasicUpDownCounter
	histograms map[string]*BasicHistogram
	meta       map[string]InstrumentConfig
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		updowns:    make(map[string]*BasicUpDownCounter),
		histograms: make(map[string]*BasicHistogram),
		meta:       make(map[string]InstrumentConfig),
	}
}

// Counter returns the monotonic counter registered under name, creating it
// on first use.
func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.RLock()
	c, ok := p.counters[name]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// re-check after acquiring the write lock
	if c, ok = p.counters[name]; ok {
		return c
	}
	p.meta[name] = applyOptions(opts)
	c = &BasicCounter{}
	p.counters[name] = c
	return c
}

// UpDownCounter returns the up/down counter registered under name, creating
// it on first use.
func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.RLock()
	u, ok := p.updowns[name]
	p.mu.RUnlock()
	if ok {
		return u
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok = p.updowns[name]; ok {
		return u
	}
	p.meta[name] = applyOptions(opts)
	u = &BasicUpDownCounter{}
	p.updowns[name] = u
	return u
}

// Histogram returns the histogram registered under name, creating it on
// first use.
func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.RLock()
	h, ok := p.histograms[name]
	p.mu.RUnlock()
	if ok {
		return h
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok = p.histograms[name]; ok {
		return h
	}
	p.meta[name] = applyOptions(opts)
	h = &BasicHistogram{}
	p.histograms[name] = h
	return h
}

// Meta returns the stored InstrumentConfig for name, if any.
func (p *BasicProvider) Meta(name string) (InstrumentConfig, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cfg, ok := p.meta[name]
	return cfg, ok
}

// BasicCounter is a monotonic counter backed by an atomic.
type BasicCounter struct {
	v atomic.Int64
}

func (c *BasicCounter) Add(n int64) { c.v.Add(n) }

// Value returns the current count.
func (c *BasicCounter) Value() int64 { return c.v.Load() }

// BasicUpDownCounter is a bidirectional counter backed by an atomic.
type BasicUpDownCounter struct {
	v atomic.Int64
}

func (c *BasicUpDownCounter) Add(n int64) { c.v.Add(n) }

// Value returns the current value.
func (c *BasicUpDownCounter) Value() int64 { return c.v.Load() }

// BasicHistogram accumulates count and sum of recorded measurements.
type BasicHistogram struct {
	mu    sync.Mutex
	count uint64
	sum   float64
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
}

// Count returns the number of recorded measurements.
func (h *BasicHistogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Sum returns the sum of recorded measurements.
func (h *BasicHistogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}
