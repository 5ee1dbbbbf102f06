// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package billsync

import "strings"

// normalizeInvoiceNo is the duplicate-detection key: whitespace-trimmed and
// lower-cased. An empty key never matches.
func normalizeInvoiceNo(invoiceNo string) string {
	return strings.ToLower(strings.TrimSpace(invoiceNo))
}

// FindDuplicate scans existing records for one whose normalized invoice
// number equals the candidate's. First match by store order wins. Returns nil
// for an empty normalized candidate: untagged invoices never collide.
//
// Detection only forewarns the operator before a new record is constructed;
// it never mutates the store and never merges records.
func FindDuplicate(candidateInvoiceNo string, existing []Record) *Record {
	key := normalizeInvoiceNo(candidateInvoiceNo)
	if key == "" {
		return nil
	}
	for i := range existing {
		if normalizeInvoiceNo(existing[i].InvoiceNo) == key {
			return &existing[i]
		}
	}
	return nil
}
