// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import (
	"context"
	"fmt"
)

// BatchOperation is one logical mutation applied to a set of record ids,
// all-or-nothing against the local store.
type BatchOperation interface {
	batchOp()
}

// GroupEdit sets the group label and color tag on every targeted record.
type GroupEdit struct {
	Description string
	ColorTheme  string
}

// BulkPack marks every targeted record packed, all with one shared stamp.
type BulkPack struct{}

// BulkDelete removes the targeted records locally and issues independent
// best-effort remote deletes. No tombstone is recorded: an edit made on
// another device between the local delete and the remote delete can
// resurrect the record on the next full sync.
type BulkDelete struct{}

func (GroupEdit) batchOp()  {}
func (BulkPack) batchOp()   {}
func (BulkDelete) batchOp() {}

// BatchApply applies op to every record whose id is in ids. The local write
// is all-or-nothing: on failure none of the intended mutations are visible
// and the error wraps ErrStoreWrite. Remote propagation is best-effort;
// partial remote failure is healed by the next full sync.
func (s *Service) BatchApply(ctx context.Context, ids []string, op BatchOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.listLogged(ctx)
	targets := make(map[string]bool, len(ids))
	for _, id := range ids {
		targets[id] = true
	}

	if _, ok := op.(BulkDelete); ok {
		return s.bulkDelete(ctx, records, targets)
	}

	// One stamp for the whole batch, bumped past every target's previous
	// UpdatedAt so the per-writer monotonicity invariant holds.
	stamp := s.now().UnixMilli()
	for _, rec := range records {
		if targets[rec.ID] && stamp <= rec.UpdatedAt {
			stamp = rec.UpdatedAt + 1
		}
	}

	for i := range records {
		if !targets[records[i].ID] {
			continue
		}
		switch op := op.(type) {
		case GroupEdit:
			records[i].Description = op.Description
			records[i].ColorTheme = op.ColorTheme
		case BulkPack:
			records[i].Status = StatusPacked
			records[i].PackedAt = stamp
		default:
			return fmt.Errorf("unsupported batch operation %T", op)
		}
		records[i].Edited = true
		records[i].UpdatedAt = stamp
	}

	if err := s.store.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("batch write: %w", err)
	}

	// A single full sync propagates the batch instead of N separate pushes.
	if s.remote.IsConnected() {
		if _, err := s.reconciler.FullSync(ctx); err != nil {
			s.logger.Warn("post-batch sync failed", "error", err)
		}
	}
	return nil
}

func (s *Service) bulkDelete(ctx context.Context, records []Record, targets map[string]bool) error {
	kept := make([]Record, 0, len(records))
	var removed []string
	for _, rec := range records {
		if targets[rec.ID] {
			removed = append(removed, rec.ID)
			continue
		}
		kept = append(kept, rec)
	}

	if err := s.store.ReplaceAll(ctx, kept); err != nil {
		return fmt.Errorf("batch delete write: %w", err)
	}

	if s.remote.IsConnected() {
		for _, id := range removed {
			if err := s.remote.Delete(ctx, id); err != nil {
				s.logger.Warn("remote delete failed", "id", id, "error", err)
			}
		}
	}
	return nil
}

// QuickAdd creates count blank pending records for the given entry date in
// one local write, flagged additional, then triggers a full sync when the
// remote is connected.
func (s *Service) QuickAdd(ctx context.Context, count int, entryDate string) ([]Record, error) {
	if count <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.listLogged(ctx)
	stamp := s.now().UnixMilli()

	added := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		rec := newRecord(NewRecord{EntryDate: entryDate, Additional: true}, stamp)
		added = append(added, rec)
	}
	if err := s.store.ReplaceAll(ctx, append(added, records...)); err != nil {
		return nil, fmt.Errorf("quick add write: %w", err)
	}

	if s.remote.IsConnected() {
		if _, err := s.reconciler.FullSync(ctx); err != nil {
			s.logger.Warn("post-quick-add sync failed", "error", err)
		}
	}
	return added, nil
}
