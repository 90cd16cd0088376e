// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"errors"
	"testing"

	"github.com/CrawX/go-imap-dashboard/domain"

	"github.com/emersion/go-imap"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImapConnection_Select(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := NewMockimapClient(ctrl)
	conn := newImapConnection(c)

	c.EXPECT().
		Select(gomock.Eq("INBOX"), gomock.Eq(false)).
		Return(&imap.MailboxStatus{Name: "INBOX", UidValidity: 7, Messages: 3}, nil)

	uidValidity, err := conn.Select("INBOX")
	assert.NoError(t, err)
	assert.Equal(t, u32(7), uidValidity)
	assert.Equal(t, "INBOX", conn.selectedFolder)
}

func TestImapConnection_SelectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := NewMockimapClient(ctrl)
	conn := newImapConnection(c)

	c.EXPECT().
		Select(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("no such mailbox"))

	_, err := conn.Select("Missing")
	assert.EqualError(t, err, "could not select folder: no such mailbox")
	assert.Empty(t, conn.selectedFolder)
}

func TestImapConnection_NotSelected(t *testing.T) {
	conn := newImapConnection(nil)

	_, err := conn.ListNewest(10)
	assert.ErrorIs(t, err, ErrNoFolderSelected)
	_, err = conn.FetchMessages(u32a(1))
	assert.ErrorIs(t, err, ErrNoFolderSelected)
}

func TestImapConnection_ListNewest(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected []uint32
	}{
		{"all", 0, u32a(2, 4, 3, 1)},
		{"negative", -1, u32a(2, 4, 3, 1)},
		{"limited", 2, u32a(2, 4)},
		{"larger", 10, u32a(2, 4, 3, 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			conn, c := selected(ctrl, "INBOX", 7)
			c.EXPECT().
				UidSearch(gomock.Eq(imap.NewSearchCriteria())).
				Return(u32a(1, 2, 3, 4), nil)
			c.EXPECT().
				UidFetch(gomock.Eq(seqset(u32a(1, 2, 3, 4)...)), gomock.Eq([]imap.FetchItem{imap.FetchUid, imap.FetchInternalDate}), gomock.Any()).
				DoAndReturn(answerFetch(
					dated(1, day(1)),
					dated(2, day(5)),
					// same date, higher uid first
					dated(3, day(4)),
					dated(4, day(4)),
				))

			uids, err := conn.ListNewest(tc.limit)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, uids)
		})
	}
}

func TestImapConnection_ListNewestEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().
		UidSearch(gomock.Any()).
		Return(u32a(), nil)

	uids, err := conn.ListNewest(10)
	assert.NoError(t, err)
	assert.Empty(t, uids)
}

func TestImapConnection_ListNewestFetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().
		UidSearch(gomock.Any()).
		Return(u32a(1), nil)
	c.EXPECT().
		UidFetch(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ *imap.SeqSet, _ []imap.FetchItem, ch chan *imap.Message) error {
			close(ch)
			return errors.New("connection closed")
		})

	_, err := conn.ListNewest(10)
	assert.EqualError(t, err, "could not fetch mails: connection closed")
}

func TestImapConnection_FetchMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().
		UidFetch(gomock.Eq(seqset(u32a(3, 1, 2)...)), gomock.Any(), gomock.Any()).
		DoAndReturn(answerFetch(
			withBody(1, day(1), []string{imap.SeenFlag, imap.AnsweredFlag},
				"From: nfe_br@bionexo.com",
				"Reply-To: someone@example.com",
				"Subject: Nota",
				"",
				"Segue a nota",
			),
			withBody(2, day(2), nil,
				"From: boss@example.com",
				"Subject: Convite",
				"Content-Type: text/calendar",
				"",
				"BEGIN:VCALENDAR",
			),
			withBody(3, day(3), []string{imap.RecentFlag},
				"From: Tesouraria <TESOURARIA_BR@bionexo.com>",
				"Subject: Aguardo retorno",
				"",
				"Por favor retorno",
			),
		))

	messages, err := conn.FetchMessages(u32a(3, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, []*domain.RawMessage{
		{
			Ref:           domain.MessageRef{Folder: "INBOX", UidValidity: 7, Uid: 3},
			Kind:          domain.KindMail,
			Subject:       "Aguardo retorno",
			SenderAddress: "TESOURARIA_BR@bionexo.com",
			Body:          "Por favor retorno",
			ReceivedTime:  day(3),
			Unread:        true,
		},
		{
			Ref:             domain.MessageRef{Folder: "INBOX", UidValidity: 7, Uid: 1},
			Kind:            domain.KindMail,
			Subject:         "Nota",
			SenderAddress:   "nfe_br@bionexo.com",
			Body:            "Segue a nota",
			ReceivedTime:    day(1),
			Sent:            true,
			ReplyRecipients: []string{"someone@example.com"},
		},
		{
			Ref:           domain.MessageRef{Folder: "INBOX", UidValidity: 7, Uid: 2},
			Kind:          domain.KindMeeting,
			Subject:       "Convite",
			SenderAddress: "boss@example.com",
			ReceivedTime:  day(2),
			Unread:        true,
		},
	}, messages)
}

func TestImapConnection_FetchMessagesBrokenBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().
		UidFetch(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(answerFetch(
			&imap.Message{Uid: u32(1), InternalDate: day(1), Flags: []string{imap.AnsweredFlag}},
			withBody(2, day(2), nil,
				"From: nfe_br@bionexo.com",
				"Subject: Nota quebrada",
				"MIME-Version: 1.0",
				"Content-Type: multipart/mixed; boundary=b1",
				"",
				"--b1",
				"Content-Type: text/plain; charset=utf-8",
				"Content-Transfer-Encoding: base64",
				"",
				"!!!not base64!!!",
				"--b1--",
				"",
			),
		))

	messages, err := conn.FetchMessages(u32a(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []*domain.RawMessage{
		{
			Ref:          domain.MessageRef{Folder: "INBOX", UidValidity: 7, Uid: 1},
			Kind:         domain.KindMail,
			ReceivedTime: day(1),
			Unread:       true,
			Sent:         true,
		},
		{
			Ref:           domain.MessageRef{Folder: "INBOX", UidValidity: 7, Uid: 2},
			Kind:          domain.KindMail,
			Subject:       "Nota quebrada",
			SenderAddress: "nfe_br@bionexo.com",
			ReceivedTime:  day(2),
			Unread:        true,
		},
	}, messages)
}

func TestImapConnection_FetchMessagesEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, _ := selected(ctrl, "INBOX", 7)
	messages, err := conn.FetchMessages(u32a())
	assert.NoError(t, err)
	assert.Empty(t, messages)
}

func TestImapConnection_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().Logout().Return(nil)
	assert.NoError(t, conn.Close())
}
