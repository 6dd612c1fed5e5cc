package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/datamind-cli/internal/utils"
)

// FileStore keeps the snapshot as a JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func init() {
	Register("file", func(_ context.Context, cfg Config) (Store, error) {
		if cfg.DSN == "" {
			return nil, errors.New("session: file backend needs a path")
		}
		return NewFileStore(cfg.DSN), nil
	})
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	b, err := utils.PrettyJSON(snap)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(s.path, b); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &snap, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
