// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"errors"
	"fmt"
)

type Status int

const (
	NewMail = Status(iota)
	ReturnPending
	ReturnSent
)

// Labels as they appear in the workbook and on the dashboard.
const (
	NewMailLabel       = "Novo E-mail"
	ReturnPendingLabel = "Retorno"
	ReturnSentLabel    = "Retorno Enviado"
)

var ErrUnknownStatus = errors.New("unknown status")

func (s Status) String() string {
	switch s {
	case NewMail:
		return NewMailLabel
	case ReturnPending:
		return ReturnPendingLabel
	case ReturnSent:
		return ReturnSentLabel
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func ParseStatus(label string) (Status, error) {
	switch label {
	case NewMailLabel:
		return NewMail, nil
	case ReturnPendingLabel:
		return ReturnPending, nil
	case ReturnSentLabel:
		return ReturnSent, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownStatus, label)
}

type ClassifiedRecord struct {
	Subject  string
	Sender   string
	Status   Status
	Category string
}

type DedupedRecord struct {
	ClassifiedRecord
	OccurrenceCount int
}

type CategoryCount struct {
	Category string
	Count    int
}

type AggregateCounts struct {
	Unread int
	Recent int
	// One entry per configured sender category, in rule order.
	PerCategory []CategoryCount
}

// Category returns the count for the named category and whether it is configured.
func (c AggregateCounts) Category(name string) (int, bool) {
	for _, cc := range c.PerCategory {
		if cc.Category == name {
			return cc.Count, true
		}
	}
	return 0, false
}
