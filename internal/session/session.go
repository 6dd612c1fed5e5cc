// Package session persists the most recent ingestion result so it survives
// restarts. Exactly one snapshot is kept per store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KaramelBytes/datamind-cli/internal/dashboard"
	"github.com/KaramelBytes/datamind-cli/internal/dataset"
	"github.com/google/uuid"
)

// ErrNotFound indicates that no snapshot is stored.
var ErrNotFound = errors.New("session: no snapshot stored")

// Snapshot is the persisted result of one ingestion.
type Snapshot struct {
	ID         string                `json:"id"`
	FileName   string                `json:"fileName"`
	Dataset    *dataset.Dataset      `json:"dataset"`
	Indicators []dashboard.Indicator `json:"indicators"`
	Charts     []dashboard.Chart     `json:"charts"`
	SavedAt    time.Time             `json:"savedAt"`
}

// NewSnapshot assembles a snapshot with a fresh id.
func NewSnapshot(fileName string, ds *dataset.Dataset, indicators []dashboard.Indicator, charts []dashboard.Chart) *Snapshot {
	return &Snapshot{
		ID:         uuid.NewString(),
		FileName:   fileName,
		Dataset:    ds,
		Indicators: indicators,
		Charts:     charts,
		SavedAt:    time.Now().UTC(),
	}
}

// Store saves, loads and clears the single current snapshot.
// Save replaces whatever was stored before.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
	Close() error
}

// Config selects a backend and its data source.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Store for a registered backend kind.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Backend packages call it
// from init. Registering an empty kind, a nil factory or a duplicate kind panics.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("session: Register called with empty kind")
	}
	if f == nil {
		panic("session: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("session: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Open constructs the Store registered for cfg.Kind.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Kind == "" {
		return nil, errors.New("session: missing backend kind")
	}
	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unsupported session backend %q", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Kinds lists the registered backend kinds.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	return out
}
