// SPDX-License-Identifier: GPL-3.0-or-later
package dashboard

import (
	"testing"

	"github.com/CrawX/go-imap-dashboard/domain"

	"github.com/stretchr/testify/assert"
)

func row(subject string, status domain.Status, category string) domain.DedupedRecord {
	return domain.DedupedRecord{
		ClassifiedRecord: domain.ClassifiedRecord{Subject: subject, Sender: "a@example.com", Status: status, Category: category},
		OccurrenceCount:  1,
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		rows     []domain.DedupedRecord
		counts   domain.AggregateCounts
		expected Summary
	}{
		{
			"empty",
			nil,
			domain.AggregateCounts{},
			Summary{Badges: []domain.CategoryCount{}},
		},
		{
			"mixed",
			[]domain.DedupedRecord{
				row("a", domain.NewMail, "Férias"),
				row("b", domain.ReturnSent, ""),
				row("c", domain.ReturnPending, "Financeiro"),
				row("d", domain.NewMail, "Férias"),
			},
			domain.AggregateCounts{Unread: 2, Recent: 3, PerCategory: []domain.CategoryCount{{Category: "Financeiro", Count: 7}}},
			Summary{
				Received: 4,
				Replied:  1,
				Pending:  2,
				Returns:  1,
				Unread:   2,
				Recent:   3,
				Badges: []domain.CategoryCount{
					{Category: "Férias", Count: 2},
					{Category: "Financeiro", Count: 1},
				},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Summarize(tc.rows, tc.counts))
		})
	}
}
