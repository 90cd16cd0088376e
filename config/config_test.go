// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
ImapHost = "imap.example.com:993"
User = "me@example.com"
Password = "secret"
WindowSize = 20
Store = "sqlite"
Database = "test.db"
Loglevel = "debug"

[[SenderCategory]]
Name = "Financeiro"
Patterns = ["nfe_br@bionexo.com"]

[[SubjectCategory]]
Name = "Folha Mensal"
Patterns = ["folha", "mensal"]

[[SubjectCategory]]
Name = "Férias"
Patterns = ["férias"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o600))
	return filename
}

func TestReadConfig(t *testing.T) {
	c, err := ReadConfig(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, SourceImap, c.MailSource)
	assert.Equal(t, "imap.example.com:993", c.ImapHost)
	assert.Equal(t, "INBOX", c.Folder)
	assert.Equal(t, 20, c.WindowSize)
	assert.Equal(t, StoreSqlite, c.Store)
	assert.Equal(t, "test.db", c.Database)
	assert.True(t, c.Dashboard)
	assert.Equal(t, "debug", *c.Loglevel)
	assert.True(t, c.HasRules())
	assert.Equal(t, []Category{{"Financeiro", []string{"nfe_br@bionexo.com"}}}, c.SenderCategory)
	assert.Equal(t, []Category{
		{"Folha Mensal", []string{"folha", "mensal"}},
		{"Férias", []string{"férias"}},
	}, c.SubjectCategory)
}

func TestReadConfig_Defaults(t *testing.T) {
	c, err := ReadConfig(writeConfig(t, "MailSource = \"outlook\"\n"))
	require.NoError(t, err)

	assert.Equal(t, &Config{
		MailSource: SourceOutlook,
		Folder:     "INBOX",
		WindowSize: 50,
		Store:      StoreWorkbook,
		Workbook:   "dashboard_emails.xlsx",
		Database:   "dashboard.db",
		Dashboard:  true,
	}, c)
	assert.False(t, c.HasRules())
}

func TestReadConfig_MissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfig_validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			MailSource: SourceImap,
			ImapHost:   "imap.example.com:993",
			User:       "me",
			Password:   "secret",
			Folder:     "INBOX",
			WindowSize: 50,
			Store:      StoreWorkbook,
			Workbook:   "dashboard_emails.xlsx",
		}
	}
	tests := []struct {
		name   string
		modify func(c *Config)
		err    string
	}{
		{"ok", func(c *Config) {}, ""},
		{"keyring", func(c *Config) { c.Password = ""; c.PasswordKeyring = "imap" }, ""},
		{"nopassword", func(c *Config) { c.Password = " " }, "set either Password or PasswordKeyring to log in to the imap server"},
		{"nohost", func(c *Config) { c.ImapHost = "" }, "ImapHost must not be empty, set to host:port of the imap server"},
		{"nouser", func(c *Config) { c.User = "" }, "User must not be empty, set to username on the imap server"},
		{"outlooknohost", func(c *Config) { c.MailSource = SourceOutlook; c.ImapHost = "" }, ""},
		{"badsource", func(c *Config) { c.MailSource = "pop3" }, `MailSource must be "imap" or "outlook", got "pop3"`},
		{"nofolder", func(c *Config) { c.Folder = "" }, "Folder must not be empty, set to the folder to inspect"},
		{"window", func(c *Config) { c.WindowSize = 0 }, "WindowSize must be positive, got 0"},
		{"badstore", func(c *Config) { c.Store = "csv" }, `Store must be "xlsx" or "sqlite", got "csv"`},
		{"noworkbook", func(c *Config) { c.Workbook = "" }, "Workbook must not be empty, set to a filename for the xlsx workbook"},
		{"nodatabase", func(c *Config) { c.Store = StoreSqlite }, "Database name must not be empty, set to a filename for the sqlite database"},
		{"unnamedcategory", func(c *Config) { c.SubjectCategory = []Category{{"", []string{"x"}}} }, "category Name must not be empty"},
		{"emptycategory", func(c *Config) { c.SenderCategory = []Category{{"Financeiro", nil}} }, "category Financeiro has no Patterns"},
		{"duplicatesender", func(c *Config) {
			c.SenderCategory = []Category{{"Financeiro", []string{"a@example.com"}}, {"Compras", []string{"b@example.com"}}, {"Financeiro", []string{"c@example.com"}}}
		}, "category Financeiro is defined twice in SenderCategory, merge its Patterns into one table"},
		{"duplicatesubject", func(c *Config) {
			c.SubjectCategory = []Category{{"Nota", []string{"nota"}}, {"Nota", []string{"nf"}}}
		}, "category Nota is defined twice in SubjectCategory, merge its Patterns into one table"},
		{"samenameacrosstables", func(c *Config) {
			c.SenderCategory = []Category{{"Nota", []string{"nfe@example.com"}}}
			c.SubjectCategory = []Category{{"Nota", []string{"nota"}}}
		}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.modify(c)
			err := c.validate()
			if len(tc.err) == 0 {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.err)
			}
		})
	}
}
