// SPDX-License-Identifier: GPL-3.0-or-later
package rules

import (
	"fmt"
	"strings"
)

type ConflictKind string

const (
	DuplicateSender  = ConflictKind("duplicate sender")
	DuplicateKeyword = ConflictKind("duplicate keyword")
	ShadowedKeyword  = ConflictKind("shadowed keyword")
)

// Conflict describes a pattern that makes one category shadow another. Categories is in rule
// order, so its last element is the category that wins at runtime.
type Conflict struct {
	Kind       ConflictKind
	Pattern    string
	Categories []string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s %q in %s", c.Kind, c.Pattern, strings.Join(c.Categories, ", "))
}

// Validate reports overlapping rules. It does not change how rules are applied.
func (rs *RuleSet) Validate() []Conflict {
	conflicts := duplicates(rs.senders, DuplicateSender)
	conflicts = append(conflicts, duplicates(rs.subjects, DuplicateKeyword)...)

	// A keyword containing another group's keyword matches whenever the shorter one does.
	reported := map[string]bool{}
	for i, outer := range rs.subjects {
		for j, inner := range rs.subjects {
			if i == j || outer.Name == inner.Name {
				continue
			}
			for _, long := range outer.Patterns {
				for _, short := range inner.Patterns {
					if long == short || !strings.Contains(long, short) {
						continue
					}

					categories := ordered(rs.subjects, i, j)
					key := long + "\x00" + strings.Join(categories, "\x00")
					if reported[key] {
						continue
					}
					reported[key] = true

					conflicts = append(conflicts, Conflict{
						Kind:       ShadowedKeyword,
						Pattern:    long,
						Categories: categories,
					})
				}
			}
		}
	}

	return conflicts
}

func duplicates(categories []Category, kind ConflictKind) []Conflict {
	owners := map[string][]string{}
	order := []string{}
	for _, c := range categories {
		for _, p := range c.Patterns {
			if _, ok := owners[p]; !ok {
				order = append(order, p)
			}
			if !contains(owners[p], c.Name) {
				owners[p] = append(owners[p], c.Name)
			}
		}
	}

	conflicts := []Conflict{}
	for _, p := range order {
		if len(owners[p]) > 1 {
			conflicts = append(conflicts, Conflict{Kind: kind, Pattern: p, Categories: owners[p]})
		}
	}
	return conflicts
}

func ordered(categories []Category, a, b int) []string {
	if a > b {
		a, b = b, a
	}
	return []string{categories[a].Name, categories[b].Name}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
