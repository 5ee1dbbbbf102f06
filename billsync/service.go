// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Service is the collaborator-facing surface of the engine. It owns the
// local store, the injected remote handle and the reconciler, and serializes
// every mutation through one mutex so the read-whole/write-whole update
// pattern cannot interleave with itself.
type Service struct {
	store      LocalStore
	remote     Remote
	reconciler *Reconciler
	logger     *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewService wires the engine together. logger may be nil; the clock is
// overridable for tests via WithClock.
func NewService(store LocalStore, remote Remote, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		remote:     remote,
		reconciler: NewReconciler(store, remote, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start reconnects to the remote from persisted configuration, if any, and
// runs the startup reconciliation. A stale or failing configuration degrades
// to offline operation and is not an error.
func (s *Service) Start(ctx context.Context) error {
	cfg, ok, err := s.store.LoadRemoteConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading remote config: %w", err)
	}
	if !ok {
		return nil
	}
	if err := s.remote.Connect(ctx, cfg.Endpoint, cfg.Credential); err != nil {
		s.logger.Warn("startup remote connect failed, staying offline", "error", err)
		return nil
	}
	if _, err := s.SyncNow(ctx); err != nil {
		s.logger.Warn("startup sync failed", "error", err)
	}
	return nil
}

// listLogged reads the store, reporting a degraded read on the logging path
// only. Whatever could be decoded is still usable.
func (s *Service) listLogged(ctx context.Context) []Record {
	records, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("local store read degraded", "error", err)
	}
	return records
}

// CreateRecord constructs a pending record from the supplied fields and
// commits it locally, then mirrors it to the remote when connected. The push
// is best-effort: its failure does not roll back the local write.
func (s *Service) CreateRecord(ctx context.Context, in NewRecord) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := newRecord(in, s.now().UnixMilli())
	if err := s.store.UpsertOne(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("creating record: %w", err)
	}
	_ = s.reconciler.PushOne(ctx, rec)
	return rec, nil
}

// UpdateRecord applies a partial edit to the record with the given id and
// pushes the result. Returns ErrNotFound when the id is absent.
func (s *Service) UpdateRecord(ctx context.Context, id string, patch RecordPatch) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.listLogged(ctx)
	for i := range records {
		if records[i].ID != id {
			continue
		}
		patch.apply(&records[i], stampAfter(s.now(), records[i].UpdatedAt))
		if err := s.store.ReplaceAll(ctx, records); err != nil {
			return Record{}, fmt.Errorf("updating record: %w", err)
		}
		_ = s.reconciler.PushOne(ctx, records[i])
		return records[i], nil
	}
	return Record{}, fmt.Errorf("updating record %s: %w", id, ErrNotFound)
}

// TogglePacked flips the packing status of a single record.
func (s *Service) TogglePacked(ctx context.Context, id string) (Record, error) {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}
	next := StatusPacked
	if rec.Status == StatusPacked {
		next = StatusPending
	}
	return s.UpdateRecord(ctx, id, RecordPatch{Status: &next})
}

// DeleteRecord removes the record locally and schedules a best-effort remote
// delete. No tombstone is recorded; see BulkDelete for the resulting race.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteOne(ctx, id); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if s.remote.IsConnected() {
		if err := s.remote.Delete(ctx, id); err != nil {
			s.logger.Warn("remote delete failed", "id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) getRecord(ctx context.Context, id string) (Record, error) {
	for _, rec := range s.listLogged(ctx) {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("record %s: %w", id, ErrNotFound)
}

// ListAll returns every record in store order.
func (s *Service) ListAll(ctx context.Context) []Record {
	return s.listLogged(ctx)
}

// ListForDay returns the records whose entry date equals the given logical
// day, in store order.
func (s *Service) ListForDay(ctx context.Context, entryDate string) []Record {
	var out []Record
	for _, rec := range s.listLogged(ctx) {
		if rec.EntryDate == entryDate {
			out = append(out, rec)
		}
	}
	return out
}

// ListBacklog returns all pending records whose entry date is strictly
// before the given day. These are carried-over bills still awaiting packing.
func (s *Service) ListBacklog(ctx context.Context, beforeDate string) []Record {
	var out []Record
	for _, rec := range s.listLogged(ctx) {
		if rec.Status == StatusPending && rec.EntryDate < beforeDate {
			out = append(out, rec)
		}
	}
	return out
}

// ListDayGroups returns the derived per-day view of the whole store.
func (s *Service) ListDayGroups(ctx context.Context) []DayGroup {
	return GroupByDay(s.listLogged(ctx))
}

// CheckDuplicate reports an existing record with the same normalized invoice
// number, or nil. It runs strictly before record construction and never
// mutates the store; the operator decides whether to proceed.
func (s *Service) CheckDuplicate(ctx context.Context, invoiceNo string) *Record {
	return FindDuplicate(invoiceNo, s.listLogged(ctx))
}

// ConnectRemote establishes and persists a remote session, then runs an
// initial full sync. Returns false when the connection could not be
// established; no partial state is retained in that case.
func (s *Service) ConnectRemote(ctx context.Context, endpoint, credential string) bool {
	if err := s.remote.Connect(ctx, endpoint, credential); err != nil {
		s.logger.Warn("remote connect failed", "error", err)
		return false
	}
	cfg := RemoteConfig{Endpoint: endpoint, Credential: credential}
	if err := s.store.SaveRemoteConfig(ctx, cfg); err != nil {
		s.logger.Warn("persisting remote config failed", "error", err)
	}
	if _, err := s.SyncNow(ctx); err != nil {
		s.logger.Warn("initial sync failed", "error", err)
	}
	return true
}

// DisconnectRemote drops the session and clears the persisted configuration.
// Record data, local and remote, is untouched.
func (s *Service) DisconnectRemote(ctx context.Context) error {
	if err := s.remote.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting remote: %w", err)
	}
	if err := s.store.ClearRemoteConfig(ctx); err != nil {
		return fmt.Errorf("clearing remote config: %w", err)
	}
	return nil
}

// RemoteConnected reports whether the remote session is configured; callers
// surface its negation as the persistent offline indicator.
func (s *Service) RemoteConnected() bool {
	return s.remote.IsConnected()
}

// SyncNow runs a full reconciliation pass and returns the merged set. When
// the remote is unreachable the local content is returned unchanged.
func (s *Service) SyncNow(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.FullSync(ctx)
}

// Reset removes the entire local collection after explicit user
// confirmation. The remote connection configuration survives.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
