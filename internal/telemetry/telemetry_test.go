package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNoopTracer(t *testing.T) {
	for _, tracer := range []any{NoopTracer(), Tracer(false)} {
		assert.NotNil(t, tracer)
	}
	_, span := Tracer(false).Start(context.Background(), "test")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestNoopInstruments(t *testing.T) {
	inst := NoopInstruments()
	require.NotNil(t, inst)
	assert.NotNil(t, inst.IngestCount)
	assert.NotNil(t, inst.IngestErrors)
	assert.NotNil(t, inst.IngestDuration)
	assert.NotNil(t, inst.IngestRows)
	assert.NotNil(t, inst.ToolDuration)

	// Should not panic.
	inst.RecordIngest(context.Background(), 12.5, 100, nil)
	inst.RecordToolDuration(context.Background(), 3)
}

func TestProvider_Shutdown_Nil(t *testing.T) {
	var p *Provider
	assert.NoError(t, p.Shutdown(context.Background()))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestRecordIngest(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	inst := NewInstrumentsFromMeter(mp.Meter("test"))

	ctx := context.Background()
	inst.RecordIngest(ctx, 10, 42, nil)
	inst.RecordIngest(ctx, 5, 0, errors.New("bad file"))

	got := collect(t, reader)

	count, ok := got["datamind.ingest.count"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, count.DataPoints, 1)
	assert.Equal(t, int64(1), count.DataPoints[0].Value)

	errs, ok := got["datamind.ingest.errors"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)

	dur, ok := got["datamind.ingest.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, uint64(2), dur.DataPoints[0].Count)

	rows, ok := got["datamind.ingest.rows"].(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Equal(t, int64(42), rows.DataPoints[0].Sum)
}
