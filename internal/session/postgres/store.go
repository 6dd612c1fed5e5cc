// Package postgres stores the session snapshot in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KaramelBytes/datamind-cli/internal/session"
)

const currentSlot = "current"

const createTable = `CREATE TABLE IF NOT EXISTS datamind_session (
	slot      TEXT PRIMARY KEY,
	id        TEXT NOT NULL,
	file_name TEXT NOT NULL,
	payload   JSONB NOT NULL,
	saved_at  TIMESTAMPTZ NOT NULL
)`

// Store implements session.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func init() {
	session.Register("postgres", New)
}

// New connects to cfg.DSN, pings it and creates the session table.
func New(ctx context.Context, cfg session.Config) (session.Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres: missing DSN")
	}
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database (10s timeout): %w", err)
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create session table: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Save(ctx context.Context, snap *session.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO datamind_session (slot, id, file_name, payload, saved_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)
		ON CONFLICT (slot) DO UPDATE SET
			id = EXCLUDED.id,
			file_name = EXCLUDED.file_name,
			payload = EXCLUDED.payload,
			saved_at = EXCLUDED.saved_at`,
		currentSlot, snap.ID, snap.FileName, string(payload), snap.SavedAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (*session.Snapshot, error) {
	var payload string
	err := s.pool.QueryRow(ctx,
		`SELECT payload::text FROM datamind_session WHERE slot = $1`, currentSlot).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
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
	if _, err := s.pool.Exec(ctx, `DELETE FROM datamind_session WHERE slot = $1`, currentSlot); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
