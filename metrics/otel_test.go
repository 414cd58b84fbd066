package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupOtelTest installs a manual-reader meter provider and restores the
// previous one on cleanup.
func setupOtelTest(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("error shutting down meter provider: %v", err)
		}
	})

	return reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestOtelProvider_Counter(t *testing.T) {
	reader := setupOtelTest(t)

	p := NewOtelProvider("threadpool-test")
	c := p.Counter("workers.spawned",
		WithDescription("Workers started"),
		WithUnit("1"),
		WithAttributes(map[string]string{"pool": "primary"}),
	)
	c.Add(2)
	c.Add(1)

	m := findMetric(collect(t, reader), "workers.spawned")
	require.NotNil(t, m)
	require.Equal(t, "Workers started", m.Description)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	require.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestOtelProvider_UpDownCounter(t *testing.T) {
	reader := setupOtelTest(t)

	p := NewOtelProvider("threadpool-test")
	u := p.UpDownCounter("workers.active", WithUnit("1"))
	u.Add(4)
	u.Add(-1)

	m := findMetric(collect(t, reader), "workers.active")
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	require.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestOtelProvider_Histogram(t *testing.T) {
	reader := setupOtelTest(t)

	p := NewOtelProvider("threadpool-test")
	h := p.Histogram("stop.seconds", WithUnit("s"))
	h.Record(0.25)
	h.Record(0.75)

	m := findMetric(collect(t, reader), "stop.seconds")
	require.NotNil(t, m)

	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	require.Equal(t, uint64(2), hist.DataPoints[0].Count)
	require.InDelta(t, 1.0, hist.DataPoints[0].Sum, 1e-9)
}
