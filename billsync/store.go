// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import "context"

// LocalStore is the durable, process-local collection of records, keyed by
// id, surviving process restarts. Mutating operations follow a read-whole /
// write-whole pattern; ReplaceAll is all-or-nothing at the storage level.
//
// Implementations need no internal locking: the Service serializes every
// mutating call through a single mutation queue.
type LocalStore interface {
	// List returns all records in stable store order. On partially corrupt
	// storage it returns the records that could still be decoded together
	// with an error wrapping ErrStoreRead.
	List(ctx context.Context) ([]Record, error)

	// ReplaceAll atomically replaces the entire collection, preserving the
	// given order. On failure the prior content is left intact and an error
	// wrapping ErrStoreWrite is returned.
	ReplaceAll(ctx context.Context, records []Record) error

	// UpsertOne replaces the record matching its id, or prepends it to the
	// head of the collection when absent.
	UpsertOne(ctx context.Context, record Record) error

	// DeleteOne removes the record with the given id. Deleting a missing id
	// is not an error.
	DeleteOne(ctx context.Context, id string) error

	// Clear removes the entire record collection. Remote connection
	// configuration persisted alongside is not touched.
	Clear(ctx context.Context) error

	// SaveRemoteConfig persists the remote connection configuration
	// independently of record data, surviving Clear.
	SaveRemoteConfig(ctx context.Context, cfg RemoteConfig) error

	// LoadRemoteConfig returns the persisted configuration, or ok=false when
	// none has been saved.
	LoadRemoteConfig(ctx context.Context) (cfg RemoteConfig, ok bool, err error)

	// ClearRemoteConfig drops the persisted configuration.
	ClearRemoteConfig(ctx context.Context) error
}

// RemoteConfig is the persisted remote connection configuration.
type RemoteConfig struct {
	Endpoint   string `json:"endpoint"`
	Credential string `json:"credential"`
}
