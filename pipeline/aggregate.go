// SPDX-License-Identifier: GPL-3.0-or-later
package pipeline

import (
	"time"

	"github.com/CrawX/go-imap-dashboard/classifier"
	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/rules"
)

const RecentWindow = 7 * 24 * time.Hour

// Batch is the result of one aggregation pass. Refs[i] is the message behind Records[i].
type Batch struct {
	Records []domain.ClassifiedRecord
	Counts  domain.AggregateCounts
	Refs    []domain.MessageRef
}

// Aggregate classifies the first windowSize messages (all of them if windowSize is not
// positive) and counts unread, recent and per sender category messages. Messages that are
// not mail items are skipped without being counted.
func Aggregate(messages []*domain.RawMessage, windowSize int, rs *rules.RuleSet, now time.Time) *Batch {
	if windowSize > 0 && len(messages) > windowSize {
		messages = messages[:windowSize]
	}

	categories := rs.SenderCategories()
	batch := &Batch{
		Records: []domain.ClassifiedRecord{},
		Refs:    []domain.MessageRef{},
		Counts: domain.AggregateCounts{
			PerCategory: make([]domain.CategoryCount, len(categories)),
		},
	}
	index := map[string]int{}
	for i, c := range categories {
		batch.Counts.PerCategory[i] = domain.CategoryCount{Category: c}
		index[c] = i
	}

	recentSince := now.Add(-RecentWindow)
	for _, msg := range messages {
		if msg == nil || msg.Kind != domain.KindMail {
			continue
		}

		if msg.Unread {
			batch.Counts.Unread++
		}
		if IsRecent(msg.ReceivedTime, recentSince) {
			batch.Counts.Recent++
		}

		c := classifier.Classify(msg, rs)
		if len(c.SenderCategory) > 0 {
			batch.Counts.PerCategory[index[c.SenderCategory]].Count++
		}

		batch.Records = append(batch.Records, c.Record)
		batch.Refs = append(batch.Refs, msg.Ref)
	}

	return batch
}

// IsRecent reports whether received is known and not before since.
func IsRecent(received, since time.Time) bool {
	return !received.IsZero() && !received.Before(since)
}
