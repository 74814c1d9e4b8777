package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLite stores slots in the kv table of an open database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite returns a Store over the kv table of db, which the catalog
// migrations create. Works with either registered SQLite driver.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		return nil, fmt.Errorf("kv table unavailable (migrations applied?): %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
