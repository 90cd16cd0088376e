// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/log"
	"github.com/CrawX/go-imap-dashboard/mail"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/charset"
	"github.com/sirupsen/logrus"
)

var ErrNoFolderSelected = errors.New("no folder selected")
var ErrStaleRef = errors.New("folder uid validity changed since the message was listed")

func init() {
	imap.CharsetReader = charset.Reader
}

type ImapConnection struct {
	mu         sync.Mutex
	connection imapClient

	selectedFolder string
	uidValidity    uint32

	l *logrus.Logger
}

func NewImapConnection(server string, user string, password string) (*ImapConnection, error) {
	imapClient, err := client.DialTLS(server, nil)
	if err != nil {
		return nil, fmt.Errorf("could not dial to imap: %w", err)
	}

	err = imapClient.Login(user, password)
	if err != nil {
		return nil, fmt.Errorf("could not login to imap: %w", err)
	}

	conn := newImapConnection(imapClient)
	conn.l.WithFields(logrus.Fields{"server": server}).Debug("Logged in to server")

	return conn, nil
}

func newImapConnection(c imapClient) *ImapConnection {
	return &ImapConnection{
		connection: c,
		l:          log.Logger(log.LOG_IMAP),
	}
}

func (ic *ImapConnection) Select(folder string) (uint32, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	return ic.selectLocked(folder)
}

func (ic *ImapConnection) selectLocked(folder string) (uint32, error) {
	m, err := ic.connection.Select(folder, false)
	if err != nil {
		return 0, fmt.Errorf("could not select folder: %w", err)
	}

	ic.selectedFolder = folder
	ic.uidValidity = m.UidValidity
	ic.l.WithFields(logrus.Fields{"folder": folder, "messages": m.Messages}).Debug("Selected folder")
	return m.UidValidity, nil
}

// ListNewest returns the uids of the limit most recently received messages of the selected
// folder, newest first. A limit that is not positive returns all uids.
func (ic *ImapConnection) ListNewest(limit int) ([]uint32, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if len(ic.selectedFolder) == 0 {
		return nil, ErrNoFolderSelected
	}

	// Get all UIDs in folder (empty search criteria)
	criteria := imap.NewSearchCriteria()
	uids, err := ic.connection.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("could not list folder: %w", err)
	}
	if len(uids) == 0 {
		return []uint32{}, nil
	}

	messages, err := fetch(ic.connection, uids, []imap.FetchItem{imap.FetchUid, imap.FetchInternalDate})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		if a.InternalDate.Equal(b.InternalDate) {
			return a.Uid > b.Uid
		}
		return a.InternalDate.After(b.InternalDate)
	})

	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}

	newest := make([]uint32, 0, len(messages))
	for _, msg := range messages {
		newest = append(newest, msg.Uid)
	}

	return newest, nil
}

// FetchMessages fetches and parses the given uids without changing their flags. Messages
// are returned in the order of uids; uids the server no longer knows are left out. A
// message whose body is missing or broken keeps its flags and date with empty text fields.
func (ic *ImapConnection) FetchMessages(uids []uint32) ([]*domain.RawMessage, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if len(ic.selectedFolder) == 0 {
		return nil, ErrNoFolderSelected
	}
	if len(uids) == 0 {
		return []*domain.RawMessage{}, nil
	}

	fullBodySection := &imap.BodySectionName{
		Peek: true,
	}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchFlags, imap.FetchInternalDate, fullBodySection.FetchItem()}
	messages, err := fetch(ic.connection, uids, items)
	if err != nil {
		return nil, err
	}

	byUid := map[uint32]*domain.RawMessage{}
	for _, msg := range messages {
		parsed, err := parseBody(msg, fullBodySection)
		if err != nil {
			ic.l.WithFields(logrus.Fields{"uid": msg.Uid, "error": err}).Warn("Could not parse mail, using the fields read so far")
			if parsed == nil {
				parsed = &mail.Message{}
			}
		}

		byUid[msg.Uid] = ic.rawMessage(msg, parsed)
	}

	result := make([]*domain.RawMessage, 0, len(byUid))
	for _, uid := range uids {
		if m, ok := byUid[uid]; ok {
			result = append(result, m)
		}
	}

	return result, nil
}

func (ic *ImapConnection) rawMessage(msg *imap.Message, parsed *mail.Message) *domain.RawMessage {
	kind := domain.KindMail
	if parsed.Calendar {
		kind = domain.KindMeeting
	}

	received := msg.InternalDate
	if received.IsZero() {
		received = parsed.Date
	}

	return &domain.RawMessage{
		Ref: domain.MessageRef{
			Folder:      ic.selectedFolder,
			UidValidity: ic.uidValidity,
			Uid:         msg.Uid,
		},
		Kind:            kind,
		Subject:         parsed.Subject,
		SenderAddress:   parsed.From,
		Body:            parsed.Body,
		ReceivedTime:    received,
		Unread:          !hasFlag(msg.Flags, imap.SeenFlag),
		Sent:            hasFlag(msg.Flags, imap.AnsweredFlag),
		ReplyRecipients: parsed.ReplyTo,
	}
}

func parseBody(msg *imap.Message, section *imap.BodySectionName) (*mail.Message, error) {
	r := msg.GetBody(section)
	if r == nil {
		return nil, errors.New("server did not return the mail body")
	}

	rawBody, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read mail body: %w", err)
	}

	return mail.Parse(rawBody)
}

func (ic *ImapConnection) Close() error {
	return ic.connection.Logout()
}
