// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"errors"
	"fmt"

	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/mail"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"
)

// Open fetches the full message behind ref and marks it as seen.
func (ic *ImapConnection) Open(ref domain.MessageRef) (*domain.OpenedMessage, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ref.Folder != ic.selectedFolder {
		_, err := ic.selectLocked(ref.Folder)
		if err != nil {
			return nil, err
		}
	}
	if ref.UidValidity != 0 && ref.UidValidity != ic.uidValidity {
		return nil, ErrStaleRef
	}

	section := &imap.BodySectionName{
		Peek: true,
	}
	messages, err := fetch(ic.connection, []uint32{ref.Uid}, []imap.FetchItem{imap.FetchUid, imap.FetchInternalDate, section.FetchItem()})
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("message %d not found in %s", ref.Uid, ref.Folder)
	}

	parsed, err := parseBody(messages[0], section)
	if err != nil {
		var partErr *mail.PartError
		if !errors.As(err, &partErr) {
			return nil, fmt.Errorf("could not parse message %d: %w", ref.Uid, err)
		}
		ic.l.WithFields(logrus.Fields{"uid": ref.Uid, "error": err}).Warn("Showing partially read message")
	}

	err = flagSeen(ic.connection, ref.Uid)
	if err != nil {
		return nil, err
	}
	ic.l.WithFields(logrus.Fields{"folder": ref.Folder, "uid": ref.Uid}).Debug("Opened message")

	received := messages[0].InternalDate
	if received.IsZero() {
		received = parsed.Date
	}

	return &domain.OpenedMessage{
		Subject:  parsed.Subject,
		From:     parsed.From,
		Received: received,
		Body:     parsed.Body,
	}, nil
}
