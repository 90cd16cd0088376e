// SPDX-License-Identifier: GPL-3.0-or-later
package outlook

import (
	"strings"
	"time"

	"github.com/CrawX/go-imap-dashboard/domain"
)

// Outlook object classes, see OlObjectClass.
const (
	classAppointment         = 26
	classMail                = 43
	classMeetingRequest      = 53
	classMeetingCancellation = 54
	classMeetingNegative     = 55
	classMeetingPositive     = 56
	classMeetingTentative    = 57
)

const folderInbox = 6

func itemKind(class int) domain.ItemKind {
	switch class {
	case classMail:
		return domain.KindMail
	case classAppointment, classMeetingRequest, classMeetingCancellation,
		classMeetingNegative, classMeetingPositive, classMeetingTentative:
		return domain.KindMeeting
	default:
		return domain.KindOther
	}
}

// item holds the properties read from one Outlook item before conversion.
type item struct {
	class        int
	entryId      string
	subject      string
	sender       string
	body         string
	receivedTime interface{}
	unread       bool
	sent         bool
	replyTo      []string
}

func (i *item) rawMessage() *domain.RawMessage {
	received, _ := i.receivedTime.(time.Time)
	// Outlook reports unset dates as 4501-01-01.
	if received.Year() >= 4501 {
		received = time.Time{}
	}

	return &domain.RawMessage{
		Ref:             domain.MessageRef{EntryId: i.entryId},
		Kind:            itemKind(i.class),
		Subject:         i.subject,
		SenderAddress:   strings.TrimSpace(i.sender),
		Body:            i.body,
		ReceivedTime:    received,
		Unread:          i.unread,
		Sent:            i.sent,
		ReplyRecipients: i.replyTo,
	}
}
