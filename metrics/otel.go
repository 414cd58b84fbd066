package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// OtelProvider implements Provider on top of the OpenTelemetry metric API.
// It records through the global meter provider; configure it before
// constructing:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
//
// Instrument creation failures degrade to no-op instruments with a logged
// warning rather than failing the caller.
type OtelProvider struct {
	meter otelmetric.Meter
}

// NewOtelProvider returns a Provider recording under the given
// instrumentation scope.
func NewOtelProvider(scope string) OtelProvider {
	return OtelProvider{meter: otel.Meter(scope)}
}

func (p OtelProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)
	inst, err := p.meter.Int64Counter(name,
		otelmetric.WithDescription(cfg.Description),
		otelmetric.WithUnit(cfg.Unit),
	)
	if err != nil {
		warnInstrument(name, err)
		return noopCounter{}
	}
	return otelCounter{inst: inst, attrs: measurementAttrs(cfg.Attributes)}
}

func (p OtelProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)
	inst, err := p.meter.Int64UpDownCounter(name,
		otelmetric.WithDescription(cfg.Description),
		otelmetric.WithUnit(cfg.Unit),
	)
	if err != nil {
		warnInstrument(name, err)
		return noopUpDownCounter{}
	}
	return otelUpDownCounter{inst: inst, attrs: measurementAttrs(cfg.Attributes)}
}

func (p OtelProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)
	inst, err := p.meter.Float64Histogram(name,
		otelmetric.WithDescription(cfg.Description),
		otelmetric.WithUnit(cfg.Unit),
	)
	if err != nil {
		warnInstrument(name, err)
		return noopHistogram{}
	}
	return otelHistogram{inst: inst, attrs: measurementAttrs(cfg.Attributes)}
}

func warnInstrument(name string, err error) {
	slog.Warn("instrument initialization failed, using no-op instrument",
		slog.String("name", name),
		slog.String("error", err.Error()),
	)
}

func measurementAttrs(attrs map[string]string) otelmetric.MeasurementOption {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	return otelmetric.WithAttributes(kvs...)
}

type otelCounter struct {
	inst  otelmetric.Int64Counter
	attrs otelmetric.MeasurementOption
}

func (c otelCounter) Add(n int64) {
	c.inst.Add(context.Background(), n, c.attrs)
}

type otelUpDownCounter struct {
	inst  otelmetric.Int64UpDownCounter
	attrs otelmetric.MeasurementOption
}

func (c otelUpDownCounter) Add(n int64) {
	c.inst.Add(context.Background(), n, c.attrs)
}

type otelHistogram struct {
	inst  otelmetric.Float64Histogram
	attrs otelmetric.MeasurementOption
}

func (h otelHistogram) Record(v float64) {
	h.inst.Record(context.Background(), v, h.attrs)
}
