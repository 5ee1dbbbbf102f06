// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Reconciler drives bidirectional reconciliation between the local store and
// the remote replica. The remote handle is injected at construction; there is
// no ambient global session.
type Reconciler struct {
	store  LocalStore
	remote Remote
	logger *slog.Logger
}

// NewReconciler creates a reconciler over the given store and remote.
func NewReconciler(store LocalStore, remote Remote, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, remote: remote, logger: logger}
}

// PushOne mirrors a single already-committed local mutation to the remote.
// A push failure never rolls back the local change; the record is re-pushed
// by the next FullSync. The error is returned so callers can observe and
// test failures rather than only reading logs.
func (r *Reconciler) PushOne(ctx context.Context, record Record) error {
	if !r.remote.IsConnected() {
		return nil
	}
	if err := r.remote.Upsert(ctx, record); err != nil {
		r.logger.Warn("push failed, will retry on next full sync",
			"id", record.ID, "error", err)
		return err
	}
	return nil
}

// FullSync performs the pull-merge-push cycle:
//
//  1. Pull every remote record; if the remote is unreachable or not
//     connected, local content is authoritative and returned unchanged.
//  2. Merge by id with last-writer-wins on UpdatedAt. Strictly greater
//     remote stamps win; ties keep the local copy.
//  3. Rewrite the local store with the merged set, newest created first.
//  4. Re-push every merged record that is missing remotely or locally newer.
//
// The returned slice is the merged set now held by the local store.
func (r *Reconciler) FullSync(ctx context.Context) ([]Record, error) {
	local, err := r.store.List(ctx)
	if err != nil {
		r.logger.Warn("local store read degraded", "error", err)
	}

	if !r.remote.IsConnected() {
		return local, nil
	}

	remote, err := r.remote.ListAll(ctx)
	if err != nil {
		r.logger.Warn("remote unavailable, keeping local state", "error", err)
		return local, nil
	}

	merged := mergeLWW(local, remote)

	if err := r.store.ReplaceAll(ctx, merged); err != nil {
		return nil, fmt.Errorf("writing merged records: %w", err)
	}

	remoteByID := make(map[string]Record, len(remote))
	for _, rec := range remote {
		remoteByID[rec.ID] = rec
	}
	for _, rec := range merged {
		counterpart, ok := remoteByID[rec.ID]
		if ok && rec.UpdatedAt <= counterpart.UpdatedAt {
			continue
		}
		if err := r.remote.Upsert(ctx, rec); err != nil {
			r.logger.Warn("re-push failed", "id", rec.ID, "error", err)
		}
	}

	return merged, nil
}

// mergeLWW merges the two replicas by id. Local records seed the map, a
// remote record replaces its local counterpart only when strictly newer.
// The result is ordered by CreatedAt descending for stable presentation.
func mergeLWW(local, remote []Record) []Record {
	byID := make(map[string]Record, len(local))
	order := make([]string, 0, len(local))
	for _, rec := range local {
		byID[rec.ID] = rec
		order = append(order, rec.ID)
	}
	for _, rec := range remote {
		existing, ok := byID[rec.ID]
		if !ok {
			byID[rec.ID] = rec
			order = append(order, rec.ID)
			continue
		}
		if rec.UpdatedAt > existing.UpdatedAt {
			byID[rec.ID] = rec
		}
	}
	merged := make([]Record, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt > merged[j].CreatedAt
	})
	return merged
}
