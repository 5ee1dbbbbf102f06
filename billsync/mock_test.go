// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import (
	"context"
	"fmt"
)

// memStore is an in-memory LocalStore with injectable failures.
type memStore struct {
	records    []Record
	cfg        *RemoteConfig
	failWrites bool
	listErr    error
}

func (m *memStore) List(ctx context.Context) ([]Record, error) {
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out, m.listErr
}

func (m *memStore) ReplaceAll(ctx context.Context, records []Record) error {
	if m.failWrites {
		return fmt.Errorf("capacity exceeded: %w", ErrStoreWrite)
	}
	m.records = make([]Record, len(records))
	copy(m.records, records)
	return nil
}

func (m *memStore) UpsertOne(ctx context.Context, record Record) error {
	records, _ := m.List(ctx)
	for i := range records {
		if records[i].ID == record.ID {
			records[i] = record
			return m.ReplaceAll(ctx, records)
		}
	}
	return m.ReplaceAll(ctx, append([]Record{record}, records...))
}

func (m *memStore) DeleteOne(ctx context.Context, id string) error {
	records, _ := m.List(ctx)
	kept := records[:0]
	for _, rec := range records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	return m.ReplaceAll(ctx, kept)
}

func (m *memStore) Clear(ctx context.Context) error {
	return m.ReplaceAll(ctx, nil)
}

func (m *memStore) SaveRemoteConfig(ctx context.Context, cfg RemoteConfig) error {
	m.cfg = &cfg
	return nil
}

func (m *memStore) LoadRemoteConfig(ctx context.Context) (RemoteConfig, bool, error) {
	if m.cfg == nil {
		return RemoteConfig{}, false, nil
	}
	return *m.cfg, true, nil
}

func (m *memStore) ClearRemoteConfig(ctx context.Context) error {
	m.cfg = nil
	return nil
}

// fakeRemote is an in-memory Remote recording upserts and deletes.
type fakeRemote struct {
	connected bool
	rows      map[string]Record
	upserts   []string
	deletes   []string

	connectErr error
	listErr    error
	upsertErr  error
	deleteErr  error
}

func newFakeRemote(connected bool) *fakeRemote {
	return &fakeRemote{connected: connected, rows: make(map[string]Record)}
}

func (f *fakeRemote) Connect(ctx context.Context, endpoint, credential string) error {
	if f.connectErr != nil {
		return fmt.Errorf("%w: %v", ErrRemoteConfig, f.connectErr)
	}
	f.connected = true
	return nil
}

func (f *fakeRemote) ListAll(ctx context.Context) ([]Record, error) {
	if f.listErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteRead, f.listErr)
	}
	out := make([]Record, 0, len(f.rows))
	for _, rec := range f.rows {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, record Record) error {
	if f.upsertErr != nil {
		return fmt.Errorf("%w: %v", ErrRemoteWrite, f.upsertErr)
	}
	f.rows[record.ID] = record
	f.upserts = append(f.upserts, record.ID)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return fmt.Errorf("%w: %v", ErrRemoteWrite, f.deleteErr)
	}
	delete(f.rows, id)
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeRemote) IsConnected() bool { return f.connected }

func (f *fakeRemote) Disconnect(ctx context.Context) error {
	f.connected = false
	return nil
}
