// Package app orchestrates ingestion: parse, build, derive dashboard views,
// persist. It owns the current snapshot shared by the CLI, HTTP and MCP
// surfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KaramelBytes/datamind-cli/internal/dashboard"
	"github.com/KaramelBytes/datamind-cli/internal/dataset"
	"github.com/KaramelBytes/datamind-cli/internal/insight"
	"github.com/KaramelBytes/datamind-cli/internal/parser"
	"github.com/KaramelBytes/datamind-cli/internal/session"
	"github.com/KaramelBytes/datamind-cli/internal/telemetry"
)

// Insighter produces the narrative analysis of a dataset.
type Insighter interface {
	Generate(ctx context.Context, ds *dataset.Dataset) insight.Analysis
}

// Service holds the current snapshot. A successful ingestion replaces it;
// a failed one leaves it untouched. Ingestions are serialized.
type Service struct {
	mu      sync.Mutex
	current *session.Snapshot
	// loaded is set once the store has been consulted or overridden.
	loaded bool

	store    session.Store
	insights Insighter
	log      *slog.Logger
	tracer   trace.Tracer
	metrics  *telemetry.Instruments
}

type Option func(*Service)

// WithStore persists snapshots. Without a store the service is memory-only.
func WithStore(s session.Store) Option { return func(svc *Service) { svc.store = s } }

func WithInsights(i Insighter) Option { return func(svc *Service) { svc.insights = i } }

func WithLogger(l *slog.Logger) Option { return func(svc *Service) { svc.log = l } }

func WithTracer(t trace.Tracer) Option { return func(svc *Service) { svc.tracer = t } }

func WithInstruments(i *telemetry.Instruments) Option {
	return func(svc *Service) { svc.metrics = i }
}

func New(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.tracer == nil {
		s.tracer = telemetry.NoopTracer()
	}
	if s.metrics == nil {
		s.metrics = telemetry.NoopInstruments()
	}
	return s
}

// Ingest reads the file at path. See IngestReader.
func (s *Service) Ingest(ctx context.Context, path string) (*session.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		s.log.Warn("open file", "path", path, "err", err)
		return nil, &IngestError{File: filepath.Base(path), Err: err}
	}
	defer f.Close()
	return s.IngestReader(ctx, filepath.Base(path), f)
}

// IngestReader parses r as the file called name, builds the dataset and its
// dashboard views, and makes the result current. A save failure is logged
// and does not fail the ingestion.
func (s *Service) IngestReader(ctx context.Context, name string, r io.Reader) (*session.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "datamind.ingest",
		trace.WithAttributes(attribute.String("file.name", name)))
	defer span.End()
	start := time.Now()

	ds, err := build(name, r)
	if err != nil {
		s.metrics.RecordIngest(ctx, msSince(start), 0, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingest failed")
		s.log.Warn("ingestion failed", "file", name, "err", err)
		return nil, &IngestError{File: name, Err: err}
	}

	snap := session.NewSnapshot(name, ds, dashboard.Indicators(ds), dashboard.Charts(ds))
	s.current = snap
	s.loaded = true

	span.SetAttributes(
		attribute.Int("dataset.rows", ds.TotalRows),
		attribute.Int("dataset.columns", len(ds.Columns)),
		attribute.String("snapshot.id", snap.ID),
	)
	s.metrics.RecordIngest(ctx, msSince(start), ds.TotalRows, nil)
	s.log.Info("dataset ingested", "file", name, "rows", ds.TotalRows, "columns", len(ds.Columns), "snapshot", snap.ID)

	if s.store != nil {
		if err := s.store.Save(ctx, snap); err != nil {
			s.log.Error("save session", "snapshot", snap.ID, "err", err)
		}
	}
	return snap, nil
}

func build(name string, r io.Reader) (*dataset.Dataset, error) {
	tbl, err := parser.Parse(name, r)
	if err != nil {
		return nil, err
	}
	return dataset.Build(name, tbl)
}

// Current returns the in-memory snapshot, falling back once to the store.
func (s *Service) Current(ctx context.Context) (*session.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil || s.loaded || s.store == nil {
		return s.current, s.current != nil
	}
	s.loaded = true
	snap, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.log.Warn("load session", "err", err)
		}
		return nil, false
	}
	s.current = snap
	s.log.Debug("session restored", "snapshot", snap.ID, "file", snap.FileName)
	return snap, true
}

// Reset drops the current snapshot and clears the store.
func (s *Service) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.loaded = true
	if s.store == nil {
		return
	}
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error("clear session", "err", err)
	}
}

// Insights runs the narrative generator on the current dataset.
func (s *Service) Insights(ctx context.Context) (insight.Analysis, error) {
	snap, ok := s.Current(ctx)
	if !ok {
		return insight.Analysis{}, ErrNoDataset
	}
	if s.insights == nil {
		return insight.MissingKeyAnalysis(), nil
	}
	return s.insights.Generate(ctx, snap.Dataset), nil
}

// RowsQuery selects one grid page. Empty Column means the default filter column.
type RowsQuery struct {
	Column string
	Query  string
	Page   int
	Size   int
}

// RowsResult is a filtered page together with the column it was filtered on.
type RowsResult struct {
	Column string `json:"column"`
	dashboard.Page
}

// Rows filters and paginates the current dataset.
func (s *Service) Rows(ctx context.Context, q RowsQuery) (RowsResult, error) {
	snap, ok := s.Current(ctx)
	if !ok {
		return RowsResult{}, ErrNoDataset
	}
	column := q.Column
	if column == "" {
		column = dashboard.DefaultFilterColumn(snap.Dataset)
	} else if _, ok := snap.Dataset.Column(column); !ok {
		return RowsResult{}, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	rows := dashboard.Filter(snap.Dataset, column, q.Query)
	return RowsResult{Column: column, Page: dashboard.Paginate(rows, q.Page, q.Size)}, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
