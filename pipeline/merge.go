// SPDX-License-Identifier: GPL-3.0-or-later
package pipeline

import "github.com/CrawX/go-imap-dashboard/domain"

// Merge unions the records of the existing snapshot with the new ones, existing records
// first so they win ties. Info is replaced by counts, never summed.
func Merge(existing *domain.Snapshot, records []domain.DedupedRecord, counts domain.AggregateCounts) *domain.Snapshot {
	info := domain.AggregateCounts{
		Unread:      counts.Unread,
		Recent:      counts.Recent,
		PerCategory: append([]domain.CategoryCount{}, counts.PerCategory...),
	}

	if existing == nil {
		return &domain.Snapshot{
			Records: append([]domain.DedupedRecord{}, records...),
			Info:    info,
		}
	}

	union := make([]domain.DedupedRecord, 0, len(existing.Records)+len(records))
	union = append(union, existing.Records...)
	union = append(union, records...)

	return &domain.Snapshot{
		Records: Collapse(union),
		Info:    info,
	}
}
