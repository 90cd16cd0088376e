// SPDX-License-Identifier: GPL-3.0-or-later
package dashboard

import "github.com/CrawX/go-imap-dashboard/domain"

// Summary holds the figures shown above the table.
type Summary struct {
	Received int
	Replied  int
	Pending  int
	Returns  int

	Unread int
	Recent int

	// Badges counts rows per category in order of first appearance; rows without category
	// are not counted.
	Badges []domain.CategoryCount
}

func Summarize(rows []domain.DedupedRecord, counts domain.AggregateCounts) Summary {
	s := Summary{
		Received: len(rows),
		Unread:   counts.Unread,
		Recent:   counts.Recent,
		Badges:   []domain.CategoryCount{},
	}

	index := map[string]int{}
	for _, r := range rows {
		switch r.Status {
		case domain.ReturnSent:
			s.Replied++
		case domain.NewMail:
			s.Pending++
		case domain.ReturnPending:
			s.Returns++
		}

		if len(r.Category) == 0 {
			continue
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(s.Badges)
			index[r.Category] = i
			s.Badges = append(s.Badges, domain.CategoryCount{Category: r.Category})
		}
		s.Badges[i].Count++
	}

	return s
}
