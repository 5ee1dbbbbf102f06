// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import "context"

// Remote is a best-effort asynchronous mirror of the local store in a hosted
// table addressed by record id. All operations are no-ops in effect when no
// session is configured; write failures are non-fatal and healed by the next
// full reconciliation.
type Remote interface {
	// Connect establishes a session against the endpoint using the supplied
	// credential. On failure no partial session state is retained and the
	// returned error wraps ErrRemoteConfig.
	Connect(ctx context.Context, endpoint, credential string) error

	// ListAll fetches every remote record payload. On failure the error
	// wraps ErrRemoteRead and callers must treat the remote as unavailable,
	// falling back to local content only.
	ListAll(ctx context.Context) ([]Record, error)

	// Upsert writes the record keyed by its id. Idempotent: repeating the
	// same payload leaves remote state unchanged. Failures wrap
	// ErrRemoteWrite and are not retried automatically.
	Upsert(ctx context.Context, record Record) error

	// Delete removes the remote row for id if present; a missing id is not
	// an error. Failures wrap ErrRemoteWrite.
	Delete(ctx context.Context, id string) error

	// IsConnected reports whether a session is currently configured.
	IsConnected() bool

	// Disconnect drops the session. Record data on the remote is not
	// touched.
	Disconnect(ctx context.Context) error
}
