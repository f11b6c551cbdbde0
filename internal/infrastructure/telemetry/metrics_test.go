package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := NewMeterProvider(ctx, config.TelemetryConfig{Enabled: true, MetricsEnabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestMetricHelpers(t *testing.T) {
	reader, provider := newTestMeter(t)
	meter := provider.Meter("test")
	ctx := context.Background()

	counter, err := NewCounter(meter, "c_total", "counter", "1")
	require.NoError(t, err)
	counter.Inc(ctx)
	counter.Add(ctx, 4)

	fc, err := NewFloatCounter(meter, "fc_total", "float counter", "1")
	require.NoError(t, err)
	fc.Add(ctx, 1.5)

	h, err := NewHistogram(meter, HistogramOpts{Name: "h_seconds", Unit: "s", Boundaries: HTTPDurationBuckets})
	require.NoError(t, err)
	h.RecordDuration(ctx, 250*time.Millisecond)

	g, err := NewGauge(meter, "g", "gauge", "1")
	require.NoError(t, err)
	g.Record(ctx, 9)

	metrics := collect(t, reader)
	assert.Equal(t, int64(5), intSum(t, metrics["c_total"]))

	hist, ok := metrics["h_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 0.25, hist.DataPoints[0].Sum, 0.0001)

	gauge, ok := metrics["g"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Equal(t, int64(9), gauge.DataPoints[0].Value)
}
