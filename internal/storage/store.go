package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrSlotNotFound is returned when a slot has never been written or was deleted.
var ErrSlotNotFound = errors.New("storage: slot not found")

// SlotStore persists named key-value slots in a local SQLite file. The
// console keeps exactly two: the bearer token and the serialized user record.
type SlotStore struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS slots (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Open opens (creating if needed) the slot database at path.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*SlotStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open slot database: %w", err)
	}
	// A second pooled connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}

	return &SlotStore{db: db}, nil
}

// Put writes a slot, replacing any previous value.
func (s *SlotStore) Put(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", name, err)
	}
	return nil
}

// Get reads a slot. A missing slot is ErrSlotNotFound, not a storage failure.
func (s *SlotStore) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM slots WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read slot %s: %w", name, err)
	}
	return value, nil
}

// Delete removes a slot. Deleting an absent slot is a no-op.
func (s *SlotStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SlotStore) Close() error {
	return s.db.Close()
}
