// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

// Package remotepg is the Postgres-backed remote replica client. It mirrors
// the local collection into a hosted table keyed by record id, holding the
// record itself as an opaque JSON payload next to its update stamp. All
// operations are best-effort: the engine stays fully usable offline and the
// next full reconciliation heals any missed write.
package remotepg

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Albinsuresh2510/gracepackingai/billsync"
)

// Client implements billsync.Remote over a pgx connection pool.
type Client struct {
	logger *slog.Logger

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

var _ billsync.Remote = (*Client)(nil)

// NewClient creates a disconnected client. logger may be nil.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

// Connect establishes a session against the endpoint (a postgres:// URL).
// A non-empty credential overrides the URL's password. On failure no partial
// session state is retained.
func (c *Client) Connect(ctx context.Context, endpoint, credential string) error {
	dsn, err := buildDSN(endpoint, credential)
	if err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrRemoteConfig, err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrRemoteConfig, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("%w: %v", billsync.ErrRemoteConfig, err)
	}
	if err := initializeSchema(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("%w: %v", billsync.ErrRemoteConfig, err)
	}

	c.mu.Lock()
	if c.pool != nil {
		c.pool.Close()
	}
	c.pool = pool
	c.mu.Unlock()

	c.logger.Info("remote replica connected")
	return nil
}

func buildDSN(endpoint, credential string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	if credential != "" {
		user := "postgres"
		if u.User != nil {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, credential)
	}
	return u.String(), nil
}

func initializeSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, /*language=postgresql*/ `
			CREATE TABLE IF NOT EXISTS bills (
				id         TEXT   NOT NULL PRIMARY KEY,
				data       JSONB  NOT NULL,
				updated_at BIGINT NOT NULL
			)`)
		return err
	})
}

func (c *Client) currentPool() *pgxpool.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool
}

// IsConnected reports whether a session is currently configured.
func (c *Client) IsConnected() bool {
	return c.currentPool() != nil
}

// ListAll fetches every remote record payload.
func (c *Client) ListAll(ctx context.Context) ([]billsync.Record, error) {
	pool := c.currentPool()
	if pool == nil {
		return nil, billsync.ErrNotConnected
	}
	rows, err := pool.Query(ctx, /*language=postgresql*/ `SELECT data FROM bills`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billsync.ErrRemoteRead, err)
	}
	defer rows.Close()

	var records []billsync.Record
	for rows.Next() {
		var rec billsync.Record
		if err := rows.Scan(&rec); err != nil {
			return nil, fmt.Errorf("%w: %v", billsync.ErrRemoteRead, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", billsync.ErrRemoteRead, err)
	}
	return records, nil
}

// Upsert writes the record keyed by its id. Repeating the same payload is a
// no-op in effect.
func (c *Client) Upsert(ctx context.Context, record billsync.Record) error {
	pool := c.currentPool()
	if pool == nil {
		return billsync.ErrNotConnected
	}
	_, err := pool.Exec(ctx, /*language=postgresql*/ `
		INSERT INTO bills (id, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, record.ID, record, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrRemoteWrite, err)
	}
	return nil
}

// Delete removes the remote row for id if present. A missing id is not an
// error.
func (c *Client) Delete(ctx context.Context, id string) error {
	pool := c.currentPool()
	if pool == nil {
		return billsync.ErrNotConnected
	}
	if _, err := pool.Exec(ctx, /*language=postgresql*/ `DELETE FROM bills WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: %v", billsync.ErrRemoteWrite, err)
	}
	return nil
}

// Disconnect drops the session. Remote record data is untouched.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
		c.logger.Info("remote replica disconnected")
	}
	return nil
}
