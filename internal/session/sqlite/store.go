// Package sqlite stores the session snapshot in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/datamind-cli/internal/session"
)

const currentSlot = "current"

const createTable = `CREATE TABLE IF NOT EXISTS datamind_session (
	slot      TEXT PRIMARY KEY,
	id        TEXT NOT NULL,
	file_name TEXT NOT NULL,
	payload   TEXT NOT NULL,
	saved_at  TEXT NOT NULL
)`

// Store implements session.Store for SQLite. Timestamps are kept as
// RFC3339Nano text because SQLite has no native time type.
type Store struct {
	db *sql.DB
}

func init() {
	session.Register("sqlite", New)
}

// New opens the database at cfg.DSN and creates the session table.
func New(ctx context.Context, cfg session.Config) (session.Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("sqlite: missing DSN")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(ctx context.Context, snap *session.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO datamind_session (slot, id, file_name, payload, saved_at) VALUES (?, ?, ?, ?, ?)`,
		currentSlot, snap.ID, snap.FileName, string(payload), snap.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (*session.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM datamind_session WHERE slot = ?`, currentSlot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &snap, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM datamind_session WHERE slot = ?`, currentSlot); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
