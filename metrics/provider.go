// Package metrics defines the minimal instrumentation surface the pool
// records through, with no-op, in-memory, and OpenTelemetry implementations.
package metrics

// Provider constructs instruments used to record metrics.
// Implementations must be safe for concurrent use.
//
// The surface is intentionally small and stable; add separate optional
// interfaces rather than growing this one.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records values that move both ways (e.g. currently live workers).
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records the distribution of float64 measurements
// (e.g. stop latency in seconds).
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig carries optional instrument metadata. Advisory only;
// implementations may ignore any of it.
type InstrumentConfig struct {
	Description string
	Unit        string
	// Attributes are static key-value pairs attached to the instrument.
	// Keep cardinality bounded.
	Attributes map[string]string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets an advisory description for the instrument.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets an advisory unit for the instrument (e.g. "1", "s").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

// WithAttributes attaches static attributes to the instrument.
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

// applyOptions builds InstrumentConfig from options.
func applyOptions(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
