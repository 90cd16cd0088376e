// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	SourceImap    = "imap"
	SourceOutlook = "outlook"

	StoreWorkbook = "xlsx"
	StoreSqlite   = "sqlite"
)

type Category struct {
	Name     string
	Patterns []string
}

type Config struct {
	MailSource string

	ImapHost        string
	User            string
	Password        string
	PasswordKeyring string

	Folder     string
	WindowSize int

	Store    string
	Workbook string
	Database string

	DryRun    bool
	Dashboard bool

	SenderCategory  []Category
	SubjectCategory []Category

	Logfile  string
	Loglevel *string
}

func ReadConfig(filename string) (*Config, error) {
	config := &Config{
		MailSource: SourceImap,
		Folder:     "INBOX",
		WindowSize: 50,
		Store:      StoreWorkbook,
		Workbook:   "dashboard_emails.xlsx",
		Database:   "dashboard.db",
		Dashboard:  true,
	}

	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// HasRules reports whether the config defines its own categorisation tables.
func (c *Config) HasRules() bool {
	return len(c.SenderCategory) > 0 || len(c.SubjectCategory) > 0
}

func (c *Config) validate() error {
	switch c.MailSource {
	case SourceImap:
		if err := validateNonEmptyStringField(c.ImapHost, "ImapHost must not be empty, set to host:port of the imap server"); err != nil {
			return err
		}

		if err := validateNonEmptyStringField(c.User, "User must not be empty, set to username on the imap server"); err != nil {
			return err
		}

		if len(strings.TrimSpace(c.Password)) == 0 && len(strings.TrimSpace(c.PasswordKeyring)) == 0 {
			return errors.New("set either Password or PasswordKeyring to log in to the imap server")
		}
	case SourceOutlook:
	default:
		return fmt.Errorf("MailSource must be %q or %q, got %q", SourceImap, SourceOutlook, c.MailSource)
	}

	if err := validateNonEmptyStringField(c.Folder, "Folder must not be empty, set to the folder to inspect"); err != nil {
		return err
	}

	if c.WindowSize <= 0 {
		return fmt.Errorf("WindowSize must be positive, got %d", c.WindowSize)
	}

	switch c.Store {
	case StoreWorkbook:
		if err := validateNonEmptyStringField(c.Workbook, "Workbook must not be empty, set to a filename for the xlsx workbook"); err != nil {
			return err
		}
	case StoreSqlite:
		if err := validateNonEmptyStringField(c.Database, "Database name must not be empty, set to a filename for the sqlite database"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("Store must be %q or %q, got %q", StoreWorkbook, StoreSqlite, c.Store)
	}

	tables := []struct {
		name       string
		categories []Category
	}{
		{"SenderCategory", c.SenderCategory},
		{"SubjectCategory", c.SubjectCategory},
	}
	for _, table := range tables {
		seen := map[string]bool{}
		for _, category := range table.categories {
			if err := validateNonEmptyStringField(category.Name, "category Name must not be empty"); err != nil {
				return err
			}
			if len(category.Patterns) == 0 {
				return fmt.Errorf("category %s has no Patterns", category.Name)
			}
			if seen[category.Name] {
				return fmt.Errorf("category %s is defined twice in %s, merge its Patterns into one table", category.Name, table.name)
			}
			seen[category.Name] = true
		}
	}

	return nil
}

func validateNonEmptyStringField(field string, err string) error {
	if len(strings.TrimSpace(field)) == 0 {
		return errors.New(err)
	}

	return nil
}
