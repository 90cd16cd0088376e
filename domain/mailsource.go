// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "time"

//go:generate mockgen -destination=mocks/mailsource.go -package=mocks . MailSource,MessageOpener

type ItemKind string

const (
	KindMail    = ItemKind("mail")
	KindMeeting = ItemKind("meeting")
	KindOther   = ItemKind("other")
)

// MessageRef identifies a message in its source so it can be opened again later.
// Imap sources fill Folder, UidValidity and Uid, Outlook fills EntryId.
type MessageRef struct {
	Folder      string
	UidValidity uint32
	Uid         uint32
	EntryId     string
}

type RawMessage struct {
	Ref  MessageRef
	Kind ItemKind

	Subject         string
	SenderAddress   string
	Body            string
	ReceivedTime    time.Time
	Unread          bool
	Sent            bool
	ReplyRecipients []string
}

type OpenedMessage struct {
	Subject  string
	From     string
	Received time.Time
	Body     string

	// External is set when the source showed the message in its own viewer.
	External bool
}

type MailSource interface {
	Select(folder string) (uint32, error)
	// ListNewest returns the ids of at most limit messages, newest received first.
	ListNewest(limit int) ([]uint32, error)
	FetchMessages(ids []uint32) ([]*RawMessage, error)

	Close() error
}

type MessageOpener interface {
	Open(ref MessageRef) (*OpenedMessage, error)
}
