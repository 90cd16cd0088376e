// SPDX-License-Identifier: GPL-3.0-or-later
package outlook

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/log"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/sirupsen/logrus"
)

var ErrNotAvailable = errors.New("outlook is only available on windows")
var ErrNoFolderSelected = errors.New("no folder selected")

// Outlook reads mail from the local Outlook profile over COM. All COM calls run on one
// goroutine locked to its OS thread, which owns the single threaded apartment.
type Outlook struct {
	calls chan func()
	done  chan struct{}

	app       *ole.IDispatch
	namespace *ole.IDispatch
	items     *ole.IDispatch

	l *logrus.Logger
}

func NewOutlook() (*Outlook, error) {
	if runtime.GOOS != "windows" {
		return nil, ErrNotAvailable
	}

	o := &Outlook{
		calls: make(chan func()),
		done:  make(chan struct{}),
		l:     log.Logger(log.LOG_OUTLOOK),
	}

	started := make(chan error, 1)
	go o.worker(started)
	if err := <-started; err != nil {
		return nil, err
	}

	err := o.do(o.connect)
	if err != nil {
		o.Close()
		return nil, err
	}

	o.l.Debug("Connected to Outlook")
	return o, nil
}

func (o *Outlook) worker(started chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED)
	if err != nil {
		started <- fmt.Errorf("could not initialize COM: %w", err)
		return
	}
	defer ole.CoUninitialize()
	started <- nil

	for {
		select {
		case call := <-o.calls:
			call()
		case <-o.done:
			return
		}
	}
}

// do runs f on the COM goroutine and waits for it.
func (o *Outlook) do(f func() error) error {
	result := make(chan error, 1)
	select {
	case o.calls <- func() { result <- f() }:
	case <-o.done:
		return errors.New("outlook connection closed")
	}
	return <-result
}

func (o *Outlook) connect() error {
	unknown, err := oleutil.GetActiveObject("Outlook.Application")
	if err != nil {
		o.l.WithField("error", err).Debug("No running Outlook, starting one")
		unknown, err = oleutil.CreateObject("Outlook.Application")
		if err != nil {
			return fmt.Errorf("could not connect to outlook: %w", err)
		}
	}
	defer unknown.Release()

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("could not query outlook application: %w", err)
	}
	o.app = app

	namespace, err := oleutil.CallMethod(app, "GetNamespace", "MAPI")
	if err != nil {
		return fmt.Errorf("could not get MAPI namespace: %w", err)
	}
	o.namespace = namespace.ToIDispatch()

	return nil
}

// Select opens folder, which is the default inbox for "INBOX" or a subfolder of the inbox
// otherwise, and sorts its items newest first. Outlook has no uid validity, 0 is returned.
func (o *Outlook) Select(folder string) (uint32, error) {
	err := o.do(func() error {
		inbox, err := oleutil.CallMethod(o.namespace, "GetDefaultFolder", folderInbox)
		if err != nil {
			return fmt.Errorf("could not open inbox: %w", err)
		}
		defer inbox.Clear()
		target := inbox.ToIDispatch()

		if !strings.EqualFold(folder, "INBOX") {
			folders, err := oleutil.GetProperty(target, "Folders")
			if err != nil {
				return fmt.Errorf("could not list inbox folders: %w", err)
			}
			defer folders.Clear()

			sub, err := oleutil.GetProperty(folders.ToIDispatch(), "Item", folder)
			if err != nil {
				return fmt.Errorf("could not open folder %s: %w", folder, err)
			}
			defer sub.Clear()
			target = sub.ToIDispatch()
		}

		items, err := oleutil.GetProperty(target, "Items")
		if err != nil {
			return fmt.Errorf("could not get folder items: %w", err)
		}

		_, err = oleutil.CallMethod(items.ToIDispatch(), "Sort", "[ReceivedTime]", true)
		if err != nil {
			items.Clear()
			return fmt.Errorf("could not sort items: %w", err)
		}

		if o.items != nil {
			o.items.Release()
		}
		o.items = items.ToIDispatch()
		return nil
	})
	if err != nil {
		return 0, err
	}

	o.l.WithField("folder", folder).Debug("Selected folder")
	return 0, nil
}

// ListNewest returns the 1-based positions of the newest items in the sorted folder.
func (o *Outlook) ListNewest(limit int) ([]uint32, error) {
	var count int
	err := o.do(func() error {
		if o.items == nil {
			return ErrNoFolderSelected
		}

		c, err := oleutil.GetProperty(o.items, "Count")
		if err != nil {
			return fmt.Errorf("could not count items: %w", err)
		}
		defer c.Clear()
		count = int(c.Val)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if limit > 0 && count > limit {
		count = limit
	}

	positions := make([]uint32, count)
	for i := range positions {
		positions[i] = uint32(i + 1)
	}
	return positions, nil
}

func (o *Outlook) FetchMessages(positions []uint32) ([]*domain.RawMessage, error) {
	messages := make([]*domain.RawMessage, 0, len(positions))
	err := o.do(func() error {
		if o.items == nil {
			return ErrNoFolderSelected
		}

		for _, p := range positions {
			v, err := oleutil.GetProperty(o.items, "Item", int(p))
			if err != nil {
				return fmt.Errorf("could not get item %d: %w", p, err)
			}

			i := readItem(v.ToIDispatch())
			v.Clear()
			messages = append(messages, i.rawMessage())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// readItem reads the properties of an item, leaving missing ones empty. Only mail items
// have sender and reply properties.
func readItem(d *ole.IDispatch) *item {
	i := &item{
		class:   intProperty(d, "Class"),
		entryId: stringProperty(d, "EntryID"),
		subject: stringProperty(d, "Subject"),
	}
	if i.class != classMail {
		return i
	}

	i.sender = stringProperty(d, "SenderEmailAddress")
	i.body = stringProperty(d, "Body")
	i.unread = boolProperty(d, "UnRead")
	i.sent = boolProperty(d, "Sent")

	if v, err := oleutil.GetProperty(d, "ReceivedTime"); err == nil {
		i.receivedTime = v.Value()
		v.Clear()
	}

	recipients, err := oleutil.GetProperty(d, "ReplyRecipients")
	if err != nil {
		return i
	}
	defer recipients.Clear()

	r := recipients.ToIDispatch()
	count := intProperty(r, "Count")
	for n := 1; n <= count; n++ {
		recipient, err := oleutil.GetProperty(r, "Item", n)
		if err != nil {
			continue
		}
		i.replyTo = append(i.replyTo, stringProperty(recipient.ToIDispatch(), "Address"))
		recipient.Clear()
	}

	return i
}

// Open shows the item in Outlook's own window.
func (o *Outlook) Open(ref domain.MessageRef) (*domain.OpenedMessage, error) {
	opened := &domain.OpenedMessage{External: true}
	err := o.do(func() error {
		v, err := oleutil.CallMethod(o.namespace, "GetItemFromID", ref.EntryId)
		if err != nil {
			return fmt.Errorf("could not find item: %w", err)
		}
		defer v.Clear()

		d := v.ToIDispatch()
		opened.Subject = stringProperty(d, "Subject")
		opened.From = stringProperty(d, "SenderEmailAddress")

		_, err = oleutil.CallMethod(d, "Display")
		if err != nil {
			return fmt.Errorf("could not display item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.l.WithField("subject", opened.Subject).Debug("Displayed item")
	return opened, nil
}

func (o *Outlook) Close() error {
	select {
	case <-o.done:
		return nil
	default:
	}

	_ = o.do(func() error {
		for _, d := range []*ole.IDispatch{o.items, o.namespace, o.app} {
			if d != nil {
				d.Release()
			}
		}
		o.items, o.namespace, o.app = nil, nil, nil
		return nil
	})
	close(o.done)

	o.l.Debug("Disconnected from Outlook")
	return nil
}

func stringProperty(d *ole.IDispatch, name string) string {
	v, err := oleutil.GetProperty(d, name)
	if err != nil {
		return ""
	}
	defer v.Clear()

	s, _ := v.Value().(string)
	return s
}

func boolProperty(d *ole.IDispatch, name string) bool {
	v, err := oleutil.GetProperty(d, name)
	if err != nil {
		return false
	}
	defer v.Clear()

	b, _ := v.Value().(bool)
	return b
}

func intProperty(d *ole.IDispatch, name string) int {
	v, err := oleutil.GetProperty(d, name)
	if err != nil {
		return 0
	}
	defer v.Clear()

	return int(v.Val)
}
