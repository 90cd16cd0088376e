// SPDX-License-Identifier: GPL-3.0-or-later
package pipeline

import "github.com/CrawX/go-imap-dashboard/domain"

type recordKey struct {
	subject string
	sender  string
}

// Dedupe keeps the first record per (subject, sender) pair. Every kept record carries the
// number of input records sharing its subject.
func Dedupe(records []domain.ClassifiedRecord) []domain.DedupedRecord {
	deduped, _ := DedupeIndexes(records)
	return deduped
}

// DedupeIndexes works like Dedupe and additionally returns, for every kept record, its
// index in records.
func DedupeIndexes(records []domain.ClassifiedRecord) ([]domain.DedupedRecord, []int) {
	occurrences := map[string]int{}
	for _, r := range records {
		occurrences[r.Subject]++
	}

	seen := map[recordKey]bool{}
	deduped := []domain.DedupedRecord{}
	indexes := []int{}
	for i, r := range records {
		key := recordKey{r.Subject, r.Sender}
		if seen[key] {
			continue
		}
		seen[key] = true

		deduped = append(deduped, domain.DedupedRecord{
			ClassifiedRecord: r,
			OccurrenceCount:  occurrences[r.Subject],
		})
		indexes = append(indexes, i)
	}

	return deduped, indexes
}

// Collapse applies the dedupe key to records that already carry an occurrence count. The
// first record per key survives unchanged.
func Collapse(records []domain.DedupedRecord) []domain.DedupedRecord {
	seen := map[recordKey]bool{}
	collapsed := []domain.DedupedRecord{}
	for _, r := range records {
		key := recordKey{r.Subject, r.Sender}
		if seen[key] {
			continue
		}
		seen[key] = true
		collapsed = append(collapsed, r)
	}

	return collapsed
}
