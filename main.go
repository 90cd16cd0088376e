// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/CrawX/go-imap-dashboard/config"
	"github.com/CrawX/go-imap-dashboard/credential"
	"github.com/CrawX/go-imap-dashboard/dashboard"
	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/imapconnection"
	"github.com/CrawX/go-imap-dashboard/imapdashboard"
	"github.com/CrawX/go-imap-dashboard/log"
	"github.com/CrawX/go-imap-dashboard/outlook"
	"github.com/CrawX/go-imap-dashboard/persistence"
	"github.com/CrawX/go-imap-dashboard/rules"
	"github.com/CrawX/go-imap-dashboard/workbook"

	"github.com/sirupsen/logrus"
)

type source interface {
	domain.MailSource
	domain.MessageOpener
}

func main() {
	log.InitLogging("debug")
	logger := log.Logger(log.LOG_MAIN)

	conf, err := config.ReadConfig("config.toml")
	if err != nil {
		logger.WithField("error", err).Fatal("Could not load config")
	}

	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	}

	rs := ruleSet(conf)
	for _, conflict := range rs.Validate() {
		logger.WithField("conflict", conflict.String()).Warn("Rule conflict, the last category wins")
	}

	store := openStore(conf)
	defer store.Close()

	src, err := openSource(conf)
	if err != nil {
		logger.WithFields(logrus.Fields{"error": err, "source": conf.MailSource}).Fatal("Could not connect to mail source")
	}
	defer src.Close()

	configs := []imapdashboard.ConfigFunc{imapdashboard.WindowSize(conf.WindowSize)}
	if conf.DryRun {
		configs = append(configs, imapdashboard.DryRun())
	}

	id, err := imapdashboard.NewImapDashboard(src, store, rs, configs...)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not start dashboard")
	}

	logger.WithFields(logrus.Fields{"source": conf.MailSource, "folder": conf.Folder, "window": conf.WindowSize, "store": conf.Store, "dryrun": conf.DryRun}).Info("Reading mails")
	if conf.DryRun {
		logger.Warn("Skipping snapshot update due to dry-run")
	}

	result, err := id.Run(conf.Folder)
	if err != nil {
		logger.WithField("error", err).Fatal("Reading mails failed")
	}

	summary := dashboard.Summarize(result.Rows, result.Batch.Counts)
	logger.WithFields(logrus.Fields{
		"run":      result.RunId,
		"received": summary.Received,
		"replied":  summary.Replied,
		"pending":  summary.Pending,
		"returns":  summary.Returns,
		"unread":   summary.Unread,
		"recent":   summary.Recent,
	}).Info("Run finished")

	if !conf.Dashboard {
		return
	}

	status := ""
	if result.PersistErr != nil {
		status = fmt.Sprintf("Não foi possível salvar o histórico: %v", result.PersistErr)
	}

	out, err := logOutput(conf.Logfile)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not open logfile")
	}
	defer out.Close()
	log.SetOutput(out)

	err = dashboard.Run(dashboard.Data{
		Title:  fmt.Sprintf("Dashboard de E-mails - %s", conf.Folder),
		Rows:   result.Rows,
		Refs:   result.RowRefs,
		Counts: result.Batch.Counts,
		Status: status,
	}, src)

	log.SetOutput(os.Stderr)
	if err != nil {
		logger.WithField("error", err).Fatal("Dashboard failed")
	}
}

func ruleSet(conf *config.Config) *rules.RuleSet {
	if !conf.HasRules() {
		return rules.Default()
	}

	return rules.New(categories(conf.SenderCategory), categories(conf.SubjectCategory))
}

func categories(configured []config.Category) []rules.Category {
	result := make([]rules.Category, 0, len(configured))
	for _, c := range configured {
		result = append(result, rules.Category{Name: c.Name, Patterns: c.Patterns})
	}
	return result
}

// openStore does not touch the file; an unreadable snapshot is reported by the run.
func openStore(conf *config.Config) domain.SnapshotStore {
	switch conf.Store {
	case config.StoreSqlite:
		return persistence.NewPersistence(conf.Database)
	default:
		return workbook.NewWorkbook(conf.Workbook)
	}
}

func openSource(conf *config.Config) (source, error) {
	switch conf.MailSource {
	case config.SourceOutlook:
		return outlook.NewOutlook()
	default:
		password, err := credential.Password(conf.Password, conf.PasswordKeyring, credential.Open)
		if err != nil {
			return nil, err
		}
		return imapconnection.NewImapConnection(conf.ImapHost, conf.User, password)
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

// logOutput returns where logs go while the dashboard owns the terminal.
func logOutput(logfile string) (io.WriteCloser, error) {
	if logfile == "" {
		return nopCloser{io.Discard}, nil
	}

	return os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
