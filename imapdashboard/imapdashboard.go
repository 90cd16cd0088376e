// SPDX-License-Identifier: GPL-3.0-or-later
package imapdashboard

import (
	"fmt"
	"time"

	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/log"
	"github.com/CrawX/go-imap-dashboard/mail"
	"github.com/CrawX/go-imap-dashboard/pipeline"
	"github.com/CrawX/go-imap-dashboard/rules"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultWindowSize = 50
	previewSize       = 10
	previewTimeFormat = "02/01/2006 15:04"
)

type ImapDashboard struct {
	source domain.MailSource
	store  domain.SnapshotStore
	rules  *rules.RuleSet

	configuration *configuration

	l *logrus.Logger
}

// Result is everything one run produced. Rows are the deduplicated records of this run,
// RowRefs[i] is the message behind Rows[i]. PersistErr is set if the snapshot could not be
// loaded or saved; the rest of the result is valid regardless.
type Result struct {
	RunId      string
	Batch      *pipeline.Batch
	Rows       []domain.DedupedRecord
	RowRefs    []domain.MessageRef
	Snapshot   *domain.Snapshot
	PersistErr error
}

func NewImapDashboard(source domain.MailSource, store domain.SnapshotStore, rs *rules.RuleSet, configFunc ...ConfigFunc) (*ImapDashboard, error) {
	config := &configuration{
		WindowSize: DefaultWindowSize,
		Now:        time.Now,
	}
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &ImapDashboard{
		source:        source,
		store:         store,
		rules:         rs,
		configuration: config,
		l:             log.Logger(log.LOG_IMAPDASHBOARD),
	}, nil
}

// Run reads the newest messages of folder, classifies and deduplicates them and merges them
// into the stored snapshot. Errors of the mail source abort the run.
func (id *ImapDashboard) Run(folder string) (*Result, error) {
	result := &Result{RunId: uuid.NewString()}
	l := id.l.WithFields(logrus.Fields{"run": result.RunId, "folder": folder})

	uidValidity, err := id.source.Select(folder)
	if err != nil {
		return nil, fmt.Errorf("could not select folder %s: %w", folder, err)
	}

	ids, err := id.source.ListNewest(id.configuration.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("could not list folder %s: %w", folder, err)
	}
	l.WithFields(logrus.Fields{"uidvalidity": uidValidity, "messages": len(ids), "window": id.configuration.WindowSize}).Info("Selected messages")

	start := time.Now()
	messages, err := id.source.FetchMessages(ids)
	if err != nil {
		return nil, fmt.Errorf("could not fetch messages: %w", err)
	}
	l.WithFields(logrus.Fields{"fetched": len(messages), "duration": time.Since(start)}).Debug("Fetched messages")
	id.preview(l, messages)

	result.Batch = pipeline.Aggregate(messages, id.configuration.WindowSize, id.rules, id.configuration.Now())
	rows, indexes := pipeline.DedupeIndexes(result.Batch.Records)
	result.Rows = rows
	result.RowRefs = make([]domain.MessageRef, len(indexes))
	for i, index := range indexes {
		result.RowRefs[i] = result.Batch.Refs[index]
	}

	l.WithFields(logrus.Fields{
		"records": len(result.Batch.Records),
		"rows":    len(result.Rows),
		"unread":  result.Batch.Counts.Unread,
		"recent":  result.Batch.Counts.Recent,
	}).Info("Classified messages")

	result.Snapshot, result.PersistErr = id.persist(l, result.Rows, result.Batch.Counts)
	if result.PersistErr != nil {
		l.WithField("error", result.PersistErr).Error("Could not persist snapshot")
	}

	return result, nil
}

// persist merges rows into the stored snapshot. The merged snapshot is returned even when
// storing fails. A snapshot that cannot be loaded is never overwritten.
func (id *ImapDashboard) persist(l *logrus.Entry, rows []domain.DedupedRecord, counts domain.AggregateCounts) (*domain.Snapshot, error) {
	existing, err := id.store.Load()
	if err != nil {
		return pipeline.Merge(nil, rows, counts), fmt.Errorf("could not load snapshot: %w", err)
	}

	merged := pipeline.Merge(existing, rows, counts)
	if id.configuration.DryRun {
		l.WithField("records", len(merged.Records)).Warn("Skipping saving the snapshot due to dry-run")
		return merged, nil
	}

	err = id.store.Save(merged)
	if err != nil {
		return merged, fmt.Errorf("could not save snapshot: %w", err)
	}

	l.WithField("records", len(merged.Records)).Info("Saved snapshot")
	return merged, nil
}

func (id *ImapDashboard) preview(l *logrus.Entry, messages []*domain.RawMessage) {
	if !id.l.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	shown := 0
	for _, m := range messages {
		if shown == previewSize {
			break
		}
		if m == nil || m.Kind != domain.KindMail {
			continue
		}

		received := ""
		if !m.ReceivedTime.IsZero() {
			received = m.ReceivedTime.Format(previewTimeFormat)
		}
		l.WithFields(logrus.Fields{
			"received": received,
			"subject":  mail.ShortSubject(m.Subject),
			"sender":   m.SenderAddress,
		}).Debug("Preview")
		shown++
	}
}
