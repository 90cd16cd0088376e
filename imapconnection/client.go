// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

//go:generate mockgen -destination=client_mocks_test.go -package=imapconnection -source client.go
import (
	"fmt"

	"github.com/emersion/go-imap"
)

// imapClient is the subset of *client.Client used by ImapConnection.
type imapClient interface {
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Logout() error
}

// fetch runs a UID FETCH and collects every returned message.
func fetch(c imapClient, uids []uint32, items []imap.FetchItem) ([]*imap.Message, error) {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)

	out := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, out)
	}()

	messages := []*imap.Message{}
	for msg := range out {
		messages = append(messages, msg)
	}

	err := <-done
	if err != nil {
		return nil, fmt.Errorf("could not fetch mails: %w", err)
	}

	return messages, nil
}

func flagSeen(c imapClient, uid uint32) error {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uid)
	err := c.UidStore(seqset, imap.FormatFlagsOp(imap.AddFlags, true), []interface{}{imap.SeenFlag}, nil)
	if err != nil {
		return fmt.Errorf("could not set seen flag: %w", err)
	}

	return nil
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
