// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService(store *memStore, remote *fakeRemote) *Service {
	base := time.UnixMilli(1_000_000)
	return NewService(store, remote, nil).WithClock(func() time.Time {
		base = base.Add(time.Millisecond)
		return base
	})
}

func TestBatchApply_BulkPackSharesOneStamp(t *testing.T) {
	ctx := context.Background()
	store := &memStore{records: []Record{rec("1", 10, 10), rec("2", 20, 20), rec("3", 30, 30)}}
	svc := newTestService(store, newFakeRemote(false))

	require.NoError(t, svc.BatchApply(ctx, []string{"1", "2"}, BulkPack{}))

	records, err := store.List(ctx)
	require.NoError(t, err)
	byID := make(map[string]Record)
	for _, r := range records {
		byID[r.ID] = r
	}

	require.Equal(t, StatusPacked, byID["1"].Status)
	require.Equal(t, StatusPacked, byID["2"].Status)
	require.Equal(t, StatusPending, byID["3"].Status)

	// One batch stamp: PackedAt and UpdatedAt identical across targets.
	require.NotZero(t, byID["1"].PackedAt)
	require.Equal(t, byID["1"].PackedAt, byID["1"].UpdatedAt)
	require.Equal(t, byID["1"].UpdatedAt, byID["2"].UpdatedAt)
	require.Equal(t, byID["2"].PackedAt, byID["2"].UpdatedAt)

	// Untouched record keeps its stamp.
	require.Equal(t, int64(30), byID["3"].UpdatedAt)
}

func TestBatchApply_StampExceedsEveryTargetsPrevious(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(time.Hour).UnixMilli()
	store := &memStore{records: []Record{rec("1", 10, future), rec("2", 20, 20)}}
	svc := newTestService(store, newFakeRemote(false))

	require.NoError(t, svc.BatchApply(ctx, []string{"1", "2"}, BulkPack{}))

	records, _ := store.List(ctx)
	for _, r := range records {
		require.Greater(t, r.UpdatedAt, future)
	}
}

func TestBatchApply_GroupEdit(t *testing.T) {
	ctx := context.Background()
	store := &memStore{records: []Record{rec("1", 10, 10), rec("2", 20, 20)}}
	svc := newTestService(store, newFakeRemote(false))

	op := GroupEdit{Description: "morning van", ColorTheme: "amber"}
	require.NoError(t, svc.BatchApply(ctx, []string{"2"}, op))

	records, _ := store.List(ctx)
	byID := make(map[string]Record)
	for _, r := range records {
		byID[r.ID] = r
	}
	require.Equal(t, "morning van", byID["2"].Description)
	require.Equal(t, "amber", byID["2"].ColorTheme)
	require.True(t, byID["2"].Edited)
	require.Empty(t, byID["1"].Description)
}

func TestBatchApply_AtomicOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	before := []Record{rec("1", 10, 10), rec("2", 20, 20)}
	store := &memStore{records: before, failWrites: true}
	svc := newTestService(store, newFakeRemote(false))

	err := svc.BatchApply(ctx, []string{"1", "2"}, BulkPack{})
	require.ErrorIs(t, err, ErrStoreWrite)

	// Nothing visible after the failed attempt.
	store.failWrites = false
	after, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestBatchApply_BulkDelete(t *testing.T) {
	ctx := context.Background()
	store := &memStore{records: []Record{rec("1", 10, 10), rec("2", 20, 20), rec("3", 30, 30)}}
	remote := newFakeRemote(true)
	remote.rows["1"] = rec("1", 10, 10)
	remote.rows["2"] = rec("2", 20, 20)
	svc := newTestService(store, remote)

	require.NoError(t, svc.BatchApply(ctx, []string{"1", "2"}, BulkDelete{}))

	records, _ := store.List(ctx)
	require.Len(t, records, 1)
	require.Equal(t, "3", records[0].ID)
	require.ElementsMatch(t, []string{"1", "2"}, remote.deletes)
	require.NotContains(t, remote.rows, "1")
	require.NotContains(t, remote.rows, "2")
}

func TestBatchApply_BulkDeletePartialRemoteFailureKeepsLocalCorrect(t *testing.T) {
	ctx := context.Background()
	store := &memStore{records: []Record{rec("1", 10, 10), rec("2", 20, 20)}}
	remote := newFakeRemote(true)
	remote.deleteErr = context.DeadlineExceeded
	svc := newTestService(store, remote)

	require.NoError(t, svc.BatchApply(ctx, []string{"1"}, BulkDelete{}))

	records, _ := store.List(ctx)
	require.Len(t, records, 1)
	require.Equal(t, "2", records[0].ID)
}

func TestBatchApply_TriggersFullSyncWhenConnected(t *testing.T) {
	ctx := context.Background()
	store := &memStore{records: []Record{rec("1", 10, 10)}}
	remote := newFakeRemote(true)
	svc := newTestService(store, remote)

	require.NoError(t, svc.BatchApply(ctx, []string{"1"}, BulkPack{}))

	// The packed record reached the remote via the post-batch sync.
	require.Contains(t, remote.rows, "1")
	require.Equal(t, StatusPacked, remote.rows["1"].Status)
}

func TestQuickAdd(t *testing.T) {
	ctx := context.Background()
	store := &memStore{records: []Record{rec("old", 10, 10)}}
	svc := newTestService(store, newFakeRemote(false))

	added, err := svc.QuickAdd(ctx, 3, "2025-03-11")
	require.NoError(t, err)
	require.Len(t, added, 3)

	records, _ := store.List(ctx)
	require.Len(t, records, 4)
	// New records sit at the head, the old record at the tail.
	require.Equal(t, "old", records[3].ID)
	for _, r := range records[:3] {
		require.Equal(t, StatusPending, r.Status)
		require.True(t, r.Additional)
		require.Equal(t, "2025-03-11", r.EntryDate)
		require.Equal(t, r.CreatedAt, r.UpdatedAt)
	}
}

func TestQuickAdd_ZeroCountIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := &memStore{records: []Record{rec("old", 10, 10)}}
	svc := newTestService(store, newFakeRemote(false))

	added, err := svc.QuickAdd(ctx, 0, "2025-03-11")
	require.NoError(t, err)
	require.Empty(t, added)

	records, _ := store.List(ctx)
	require.Len(t, records, 1)
}
