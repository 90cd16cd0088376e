// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"context"
	"fmt"

	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1_snapshot",
			Up: []string{
				`CREATE TABLE emails (
					position INTEGER PRIMARY KEY,
					subject TEXT NOT NULL,
					sender TEXT NOT NULL,
					status TEXT NOT NULL,
					category TEXT NOT NULL,
					occurrences INTEGER NOT NULL
				)`,
				`CREATE TABLE info (
					position INTEGER PRIMARY KEY,
					name TEXT NOT NULL,
					value INTEGER NOT NULL
				)`,
			},
			Down: []string{
				`DROP TABLE emails`,
				`DROP TABLE info`,
			},
		},
	},
}

// Persistence stores the dashboard snapshot in a sqlite database. The database is opened and
// migrated on first use, so an unreadable file is reported by Load or Save.
type Persistence struct {
	datasource string
	db         *sqlx.DB
	openErr    error
	l          *logrus.Logger
}

func NewPersistence(datasource string) *Persistence {
	return &Persistence{
		datasource: datasource,
		l:          log.Logger(log.LOG_PERSISTENCE),
	}
}

func (p *Persistence) connect() error {
	if p.db != nil {
		return nil
	}
	if p.openErr != nil {
		return p.openErr
	}

	db, err := open(p.datasource, p.l)
	if err != nil {
		p.openErr = err
		return err
	}
	p.db = db
	return nil
}

func open(datasource string, l *logrus.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", datasource)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	l.WithField("file", datasource).Info("Connected")

	_, err = db.Exec(`PRAGMA journal_mode=WAL`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not set journal mode: %w", err)
	}
	_, err = db.Exec(`PRAGMA synchronous=normal`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not set synchronous mode: %w", err)
	}

	appliedMigrations, err := migrate.Exec(db.DB, "sqlite3", migrations, migrate.Up)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate to newest version: %w", err)
	}

	l.WithField("migrations", appliedMigrations).Debug("Executed migrations")

	return db, nil
}

func (p *Persistence) Close() error {
	if p.db == nil {
		return nil
	}

	err := p.db.Close()
	if err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}
	p.db = nil
	p.l.Info("Disconnected")
	return nil
}

type dbEmail struct {
	Position    int
	Subject     string
	Sender      string
	Status      string
	Category    string
	Occurrences int
}

type dbInfo struct {
	Position int
	Name     string
	Value    int
}

// Load returns nil if nothing was saved yet.
func (p *Persistence) Load() (*domain.Snapshot, error) {
	err := p.connect()
	if err != nil {
		return nil, err
	}

	dbInfos := []dbInfo{}
	err = p.db.Select(&dbInfos, `SELECT position, name, value FROM info ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	dbEmails := []dbEmail{}
	err = p.db.Select(
		&dbEmails,
		`SELECT position, subject, sender, status, category, occurrences FROM emails ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	if len(dbInfos) == 0 && len(dbEmails) == 0 {
		p.l.Debug("No snapshot saved yet")
		return nil, nil
	}

	snapshot := &domain.Snapshot{
		Records: make([]domain.DedupedRecord, 0, len(dbEmails)),
		Info: domain.AggregateCounts{
			PerCategory: []domain.CategoryCount{},
		},
	}

	for _, e := range dbEmails {
		status, err := domain.ParseStatus(e.Status)
		if err != nil {
			return nil, fmt.Errorf("could not load email at position %d: %w", e.Position, err)
		}

		snapshot.Records = append(snapshot.Records, domain.DedupedRecord{
			ClassifiedRecord: domain.ClassifiedRecord{
				Subject:  e.Subject,
				Sender:   e.Sender,
				Status:   status,
				Category: e.Category,
			},
			OccurrenceCount: e.Occurrences,
		})
	}

	for _, i := range dbInfos {
		switch {
		case i.Position == 0 && i.Name == domain.UnreadLabel:
			snapshot.Info.Unread = i.Value
		case i.Position == 1 && i.Name == domain.RecentLabel:
			snapshot.Info.Recent = i.Value
		default:
			snapshot.Info.PerCategory = append(snapshot.Info.PerCategory, domain.CategoryCount{Category: i.Name, Count: i.Value})
		}
	}

	p.l.WithFields(logrus.Fields{"records": len(snapshot.Records), "categories": len(snapshot.Info.PerCategory)}).Debug("Loaded snapshot")

	return snapshot, nil
}

// Save replaces the stored snapshot within one transaction.
func (p *Persistence) Save(snapshot *domain.Snapshot) error {
	err := p.connect()
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTxx(context.TODO(), nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}

	for _, table := range []string{"emails", "info"} {
		_, err = tx.Exec("DELETE FROM " + table)
		if err != nil {
			return txEnd(tx, fmt.Errorf("could not clear %s: %w", table, err))
		}
	}

	stmt, err := tx.Prepare(
		"INSERT INTO emails(position, subject, sender, status, category, occurrences) VALUES(?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return txEnd(tx, fmt.Errorf("could not prepare statement: %w", err))
	}
	defer stmt.Close()

	for i, r := range snapshot.Records {
		_, err := stmt.Exec(i, r.Subject, r.Sender, r.Status.String(), r.Category, r.OccurrenceCount)
		if err != nil {
			return txEnd(tx, fmt.Errorf("could not save email: %w", err))
		}
	}

	infoStmt, err := tx.Prepare("INSERT INTO info(position, name, value) VALUES(?, ?, ?)")
	if err != nil {
		return txEnd(tx, fmt.Errorf("could not prepare statement: %w", err))
	}
	defer infoStmt.Close()

	infos := []dbInfo{
		{0, domain.UnreadLabel, snapshot.Info.Unread},
		{1, domain.RecentLabel, snapshot.Info.Recent},
	}
	for i, c := range snapshot.Info.PerCategory {
		infos = append(infos, dbInfo{i + 2, c.Category, c.Count})
	}
	for _, info := range infos {
		_, err := infoStmt.Exec(info.Position, info.Name, info.Value)
		if err != nil {
			return txEnd(tx, fmt.Errorf("could not save info: %w", err))
		}
	}

	err = txEnd(tx, nil)
	if err != nil {
		return err
	}

	p.l.WithFields(logrus.Fields{"records": len(snapshot.Records)}).Info("Persisted snapshot")
	return nil
}

func txEnd(tx *sqlx.Tx, err error) error {
	if err == nil {
		err = tx.Commit()
		if err != nil {
			return fmt.Errorf("could not commit tx: %w", err)
		}
	} else {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			errStr := err.Error()
			return fmt.Errorf("%s, could not rollback tx: %w", errStr, rollbackErr)
		} else {
			return err
		}
	}

	return nil
}
