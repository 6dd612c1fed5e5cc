package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/KaramelBytes/datamind-cli"

// Instruments holds pre-created OTel metric instruments.
type Instruments struct {
	IngestCount    metric.Int64Counter
	IngestErrors   metric.Int64Counter
	IngestDuration metric.Float64Histogram
	IngestRows     metric.Int64Histogram
	ToolDuration   metric.Float64Histogram
}

// NewInstruments creates metric instruments from the global MeterProvider.
func NewInstruments() *Instruments {
	return NewInstrumentsFromMeter(otel.Meter(meterName))
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	return NewInstrumentsFromMeter(noop.NewMeterProvider().Meter(meterName))
}

// NewInstrumentsFromMeter builds the instruments on an explicit meter.
func NewInstrumentsFromMeter(meter metric.Meter) *Instruments {
	// OTel SDK returns noop instruments on error; safe to discard.
	ingestCount, _ := meter.Int64Counter("datamind.ingest.count",
		metric.WithDescription("Total number of successful file ingestions"),
	)
	ingestErrors, _ := meter.Int64Counter("datamind.ingest.errors",
		metric.WithDescription("Total number of failed file ingestions"),
	)
	ingestDuration, _ := meter.Float64Histogram("datamind.ingest.duration",
		metric.WithDescription("File ingestion duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	ingestRows, _ := meter.Int64Histogram("datamind.ingest.rows",
		metric.WithDescription("Rows per ingested dataset"),
	)
	toolDuration, _ := meter.Float64Histogram("datamind.tool.duration",
		metric.WithDescription("MCP tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Instruments{
		IngestCount:    ingestCount,
		IngestErrors:   ingestErrors,
		IngestDuration: ingestDuration,
		IngestRows:     ingestRows,
		ToolDuration:   toolDuration,
	}
}

// RecordIngest records one ingestion outcome.
func (i *Instruments) RecordIngest(ctx context.Context, ms float64, rows int, err error) {
	i.IngestDuration.Record(ctx, ms)
	if err != nil {
		i.IngestErrors.Add(ctx, 1)
		return
	}
	i.IngestCount.Add(ctx, 1)
	i.IngestRows.Record(ctx, int64(rows))
}

func (i *Instruments) RecordToolDuration(ctx context.Context, ms float64) {
	i.ToolDuration.Record(ctx, ms)
}
