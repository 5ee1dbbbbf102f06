// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

// Package billsync implements the offline-first synchronization engine for
// packing bills: a durable local collection mirrored to an optional remote
// replica, reconciled with last-writer-wins conflict resolution.
package billsync

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Status is the packing lifecycle state of a record.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPacked  Status = "PACKED"
)

// Record is a single tracked packing bill. The id is immutable once created
// and is the sole merge key between the local store and the remote replica.
// UpdatedAt is the sole tie-breaker for conflicting copies of the same id.
type Record struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customerName"`
	Address       string `json:"address"`
	InvoiceNo     string `json:"invoiceNo"`
	BillDate      string `json:"billDate,omitempty"`
	Description   string `json:"description,omitempty"`
	ColorTheme    string `json:"colorTheme,omitempty"`
	Status        Status `json:"status"`
	Delivery      bool   `json:"delivery"`
	HasReturnCode bool   `json:"hasReturnCode"`
	Edited        bool   `json:"edited"`
	Additional    bool   `json:"additional"`
	BoxCount      int    `json:"boxCount"`

	// EntryDate is the logical workday (YYYY-MM-DD) the record belongs to.
	// Assigned once at creation, independent of wall-clock creation time.
	EntryDate string `json:"entryDate"`

	// Unix milliseconds. PackedAt is non-zero iff Status == StatusPacked.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
	PackedAt  int64 `json:"packedAt,omitempty"`
}

// ExtractedFields is the output of the external image/AI extraction pipeline.
// The engine treats it as opaque input to record creation and never inspects
// image bytes or extraction semantics.
type ExtractedFields struct {
	CustomerName string `json:"customerName"`
	Address      string `json:"address"`
	InvoiceNo    string `json:"invoiceNo"`
	BillDate     string `json:"billDate"`
}

// ExtractFunc produces bill fields from a captured image. Implemented by a
// collaborator outside this package.
type ExtractFunc func(image []byte) (ExtractedFields, error)

// NewRecord carries the caller-supplied fields for record creation.
type NewRecord struct {
	ExtractedFields
	EntryDate     string
	Delivery      bool
	HasReturnCode bool
	Additional    bool
	BoxCount      int
}

// RecordPatch is a partial update of mutable record fields. Nil pointers
// leave the corresponding field untouched.
type RecordPatch struct {
	CustomerName  *string
	Address       *string
	InvoiceNo     *string
	BillDate      *string
	Description   *string
	ColorTheme    *string
	Status        *Status
	Delivery      *bool
	HasReturnCode *bool
	BoxCount      *int
}

// DayGroup is a derived view of records sharing an entry date. It is not
// persisted; it is recomputed on demand from store content.
type DayGroup struct {
	EntryDate string
	Records   []Record
}

// newRecord constructs a pending record from caller input. CreatedAt and
// UpdatedAt are both set to the supplied stamp.
func newRecord(in NewRecord, stamp int64) Record {
	entryDate := in.EntryDate
	if entryDate == "" {
		entryDate = time.UnixMilli(stamp).Format("2006-01-02")
	}
	return Record{
		ID:            uuid.NewString(),
		CustomerName:  in.CustomerName,
		Address:       in.Address,
		InvoiceNo:     in.InvoiceNo,
		BillDate:      in.BillDate,
		Status:        StatusPending,
		Delivery:      in.Delivery,
		HasReturnCode: in.HasReturnCode,
		Additional:    in.Additional,
		BoxCount:      in.BoxCount,
		EntryDate:     entryDate,
		CreatedAt:     stamp,
		UpdatedAt:     stamp,
	}
}

// apply merges the patch into r and keeps the PackedAt invariant: it is set
// when status transitions to PACKED and cleared when it transitions away.
func (p RecordPatch) apply(r *Record, stamp int64) {
	if p.CustomerName != nil {
		r.CustomerName = *p.CustomerName
	}
	if p.Address != nil {
		r.Address = *p.Address
	}
	if p.InvoiceNo != nil {
		r.InvoiceNo = *p.InvoiceNo
	}
	if p.BillDate != nil {
		r.BillDate = *p.BillDate
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.ColorTheme != nil {
		r.ColorTheme = *p.ColorTheme
	}
	if p.Delivery != nil {
		r.Delivery = *p.Delivery
	}
	if p.HasReturnCode != nil {
		r.HasReturnCode = *p.HasReturnCode
	}
	if p.BoxCount != nil {
		r.BoxCount = *p.BoxCount
	}
	if p.Status != nil && *p.Status != r.Status {
		r.Status = *p.Status
		if r.Status == StatusPacked {
			r.PackedAt = stamp
		} else {
			r.PackedAt = 0
		}
	}
	r.Edited = true
	r.UpdatedAt = stamp
}

// GroupByDay buckets records by entry date, newest day first. Records within
// a day keep their input order.
func GroupByDay(records []Record) []DayGroup {
	byDay := make(map[string][]Record)
	var days []string
	for _, r := range records {
		if _, ok := byDay[r.EntryDate]; !ok {
			days = append(days, r.EntryDate)
		}
		byDay[r.EntryDate] = append(byDay[r.EntryDate], r)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	groups := make([]DayGroup, 0, len(days))
	for _, d := range days {
		groups = append(groups, DayGroup{EntryDate: d, Records: byDay[d]})
	}
	return groups
}

// stampAfter returns a monotonic update stamp: wall clock now, bumped past
// prev so UpdatedAt strictly increases on every mutation by this writer.
func stampAfter(now time.Time, prev int64) int64 {
	s := now.UnixMilli()
	if s <= prev {
		s = prev + 1
	}
	return s
}
