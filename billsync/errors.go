// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import "errors"

// Error taxonomy. Store errors are surfaced synchronously to callers because
// losing a local write is unacceptable; remote errors degrade to
// offline-authoritative local state and are only logged at the reconciler
// boundary.
var (
	// ErrStoreRead reports corrupt or unreadable local storage. Non-fatal:
	// callers fall back to whatever content could still be decoded.
	ErrStoreRead = errors.New("local store read failed")

	// ErrStoreWrite reports a failed local write (e.g. capacity exceeded).
	// The prior collection content is left intact and the error must reach
	// the end user.
	ErrStoreWrite = errors.New("local store write failed")

	// ErrRemoteRead reports an unreachable or failed remote fetch.
	ErrRemoteRead = errors.New("remote replica read failed")

	// ErrRemoteWrite reports a failed remote upsert or delete.
	ErrRemoteWrite = errors.New("remote replica write failed")

	// ErrRemoteConfig reports a failed remote connection setup. No partial
	// session state is retained.
	ErrRemoteConfig = errors.New("remote connection setup failed")

	// ErrNotFound reports a record id absent from the local store.
	ErrNotFound = errors.New("record not found")

	// ErrNotConnected reports a remote operation attempted without a
	// configured session.
	ErrNotConnected = errors.New("remote replica not connected")
)
