// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

// Package billstore is the SQLite-backed durable local store for packing
// bill records. Records are held as opaque JSON documents in explicit store
// order; the whole collection is rewritten in one transaction so writes are
// all-or-nothing. The remote connection configuration persists in its own
// table, independent of record data.
package billstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Albinsuresh2510/gracepackingai/billsync"
)

const remoteConfigKey = "remote"

// Store implements billsync.LocalStore over a SQLite database.
type Store struct {
	db *sql.DB
}

var _ billsync.LocalStore = (*Store)(nil)

// New wraps an existing database handle and ensures the schema exists.
func New(db *sql.DB) (*Store, error) {
	if err := initializeSchema(db); err != nil {
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func initializeSchema(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS bills (
			pos  INTEGER NOT NULL,
			id   TEXT    NOT NULL PRIMARY KEY,
			data TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bills_pos ON bills(pos)`,
		`CREATE TABLE IF NOT EXISTS remote_config (
			k          TEXT NOT NULL PRIMARY KEY,
			endpoint   TEXT NOT NULL,
			credential TEXT NOT NULL
		)`,
	}
	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// List returns all records in store order. Rows that fail to decode are
// skipped; the decodable remainder is returned together with an error
// wrapping billsync.ErrStoreRead so callers can log the degradation.
func (s *Store) List(ctx context.Context) ([]billsync.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM bills ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billsync.ErrStoreRead, err)
	}
	defer rows.Close()

	var records []billsync.Record
	var corrupt int
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return records, fmt.Errorf("%w: %v", billsync.ErrStoreRead, err)
		}
		var rec billsync.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			corrupt++
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return records, fmt.Errorf("%w: %v", billsync.ErrStoreRead, err)
	}
	if corrupt > 0 {
		return records, fmt.Errorf("%w: %d undecodable rows skipped", billsync.ErrStoreRead, corrupt)
	}
	return records, nil
}

// ReplaceAll atomically replaces the entire collection, preserving the given
// order. The transaction rolls back on any failure, leaving prior content
// intact.
func (s *Store) ReplaceAll(ctx context.Context, records []billsync.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bills`); err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bills (pos, id, data) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
		}
		if _, err := stmt.ExecContext(ctx, i, rec.ID, data); err != nil {
			return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
	}
	return nil
}

// UpsertOne replaces the record matching its id in place, or prepends it to
// the head of the collection so new records list most-recent-first.
func (s *Store) UpsertOne(ctx context.Context, record billsync.Record) error {
	records, err := s.List(ctx)
	if err != nil && len(records) == 0 {
		// Refuse to rewrite the collection from a wholly failed read; a
		// partial read only drops rows that were already undecodable.
		return err
	}
	replaced := false
	for i := range records {
		if records[i].ID == record.ID {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append([]billsync.Record{record}, records...)
	}
	return s.ReplaceAll(ctx, records)
}

// DeleteOne removes the record with the given id. A missing id is a no-op.
func (s *Store) DeleteOne(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
	}
	return nil
}

// Clear removes the entire record collection. The remote_config table is not
// touched.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bills`); err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
	}
	return nil
}

// SaveRemoteConfig persists the remote connection configuration.
func (s *Store) SaveRemoteConfig(ctx context.Context, cfg billsync.RemoteConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO remote_config (k, endpoint, credential) VALUES (?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET endpoint=excluded.endpoint, credential=excluded.credential
	`, remoteConfigKey, cfg.Endpoint, cfg.Credential)
	if err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
	}
	return nil
}

// LoadRemoteConfig returns the persisted configuration, ok=false when none
// has been saved.
func (s *Store) LoadRemoteConfig(ctx context.Context) (billsync.RemoteConfig, bool, error) {
	var cfg billsync.RemoteConfig
	row := s.db.QueryRowContext(ctx,
		`SELECT endpoint, credential FROM remote_config WHERE k = ?`, remoteConfigKey)
	if err := row.Scan(&cfg.Endpoint, &cfg.Credential); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return billsync.RemoteConfig{}, false, nil
		}
		return billsync.RemoteConfig{}, false, fmt.Errorf("%w: %v", billsync.ErrStoreRead, err)
	}
	return cfg, true, nil
}

// ClearRemoteConfig drops the persisted configuration.
func (s *Store) ClearRemoteConfig(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM remote_config WHERE k = ?`, remoteConfigKey); err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrStoreWrite, err)
	}
	return nil
}
