// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"errors"
	"testing"

	"github.com/CrawX/go-imap-dashboard/domain"

	"github.com/emersion/go-imap"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func expectSeen(c *MockimapClient, uid uint32, err error) {
	c.EXPECT().
		UidStore(gomock.Eq(seqset(uid)), gomock.Eq(imap.FormatFlagsOp(imap.AddFlags, true)), gomock.Eq([]interface{}{imap.SeenFlag}), gomock.Nil()).
		Return(err)
}

func TestImapConnection_Open(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().
		UidFetch(gomock.Eq(seqset(u32(5))), gomock.Any(), gomock.Any()).
		DoAndReturn(answerFetch(
			withBody(5, day(2), nil, "From: Someone <someone@example.com>", "Subject: Oi", "", "Tudo bem?"),
		))
	expectSeen(c, u32(5), nil)

	opened, err := conn.Open(domain.MessageRef{Folder: "INBOX", UidValidity: 7, Uid: 5})
	assert.NoError(t, err)
	assert.Equal(t, &domain.OpenedMessage{
		Subject:  "Oi",
		From:     "someone@example.com",
		Received: day(2),
		Body:     "Tudo bem?",
	}, opened)
}

func TestImapConnection_OpenOtherFolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().
		Select(gomock.Eq("Archive"), gomock.Eq(false)).
		Return(&imap.MailboxStatus{Name: "Archive", UidValidity: 9}, nil)
	c.EXPECT().
		UidFetch(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(answerFetch(
			withBody(1, day(1), nil, "From: a@example.com", "Subject: x", "", "y"),
		))
	expectSeen(c, u32(1), nil)

	_, err := conn.Open(domain.MessageRef{Folder: "Archive", UidValidity: 9, Uid: 1})
	assert.NoError(t, err)
	assert.Equal(t, "Archive", conn.selectedFolder)
}

func TestImapConnection_OpenStale(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, _ := selected(ctrl, "INBOX", 7)
	_, err := conn.Open(domain.MessageRef{Folder: "INBOX", UidValidity: 6, Uid: 1})
	assert.ErrorIs(t, err, ErrStaleRef)
}

func TestImapConnection_OpenNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().
		UidFetch(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(answerFetch())

	_, err := conn.Open(domain.MessageRef{Folder: "INBOX", UidValidity: 7, Uid: 1})
	assert.EqualError(t, err, "message 1 not found in INBOX")
}

func TestImapConnection_OpenFlagError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, c := selected(ctrl, "INBOX", 7)
	c.EXPECT().
		UidFetch(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(answerFetch(
			withBody(1, day(1), nil, "From: a@example.com", "Subject: x", "", "y"),
		))
	expectSeen(c, u32(1), errors.New("read-only"))

	_, err := conn.Open(domain.MessageRef{Folder: "INBOX", UidValidity: 7, Uid: 1})
	assert.EqualError(t, err, "could not set seen flag: read-only")
}
