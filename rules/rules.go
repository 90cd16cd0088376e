// SPDX-License-Identifier: GPL-3.0-or-later
package rules

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category maps a category name to sender addresses or subject keywords.
type Category struct {
	Name     string
	Patterns []string
}

// RuleSet is immutable once created. Both tables are scanned in order and the last
// matching category wins.
type RuleSet struct {
	senders  []Category
	subjects []Category
}

func New(senders, subjects []Category) *RuleSet {
	return &RuleSet{
		senders:  normalizeCategories(senders),
		subjects: normalizeCategories(subjects),
	}
}

// Default returns the built-in categorisation tables.
func Default() *RuleSet {
	return New(
		[]Category{
			{"Financeiro", []string{"nfe_br@bionexo.com", "tesouraria_br@bionexo.com", "nmartins.dsrh@out.bionexo.com"}},
		},
		[]Category{
			{"Folha Mensal", []string{"folha", "mensal"}},
			{"Rescisão", []string{"rescisão", "demissão"}},
			{"Férias", []string{"férias"}},
		},
	)
}

func (rs *RuleSet) CategoryForSender(address string) string {
	address = normalize(address)
	category := ""
	for _, c := range rs.senders {
		for _, p := range c.Patterns {
			if p == address {
				category = c.Name
				break
			}
		}
	}
	return category
}

func (rs *RuleSet) CategoryForSubject(subject string) string {
	subject = normalize(subject)
	category := ""
	for _, c := range rs.subjects {
		for _, p := range c.Patterns {
			if strings.Contains(subject, p) {
				category = c.Name
				break
			}
		}
	}
	return category
}

// SenderCategories returns the distinct names of the sender categories in rule order. These
// are the categories counted per run.
func (rs *RuleSet) SenderCategories() []string {
	return names(rs.senders)
}

func (rs *RuleSet) SubjectCategories() []string {
	return names(rs.subjects)
}

func names(categories []Category) []string {
	result := make([]string, 0, len(categories))
	seen := map[string]bool{}
	for _, c := range categories {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		result = append(result, c.Name)
	}
	return result
}

func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

func normalizeCategories(categories []Category) []Category {
	normalized := make([]Category, 0, len(categories))
	for _, c := range categories {
		patterns := make([]string, 0, len(c.Patterns))
		for _, p := range c.Patterns {
			p = normalize(p)
			// an empty keyword would match every subject
			if len(p) == 0 {
				continue
			}
			patterns = append(patterns, p)
		}
		normalized = append(normalized, Category{Name: c.Name, Patterns: patterns})
	}
	return normalized
}
