// SPDX-License-Identifier: GPL-3.0-or-later
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
	"golang.org/x/net/html"
)

// Message is the part of a parsed RFC 5322 message the dashboard cares about.
type Message struct {
	Subject string
	From    string
	ReplyTo []string
	Date    time.Time
	Body    string
	// Calendar is set when any part of the message is a text/calendar invitation.
	Calendar bool
}

var wordDecoder = &mime.WordDecoder{
	CharsetReader: charset.Reader,
}

// DecodeHeader decodes RFC 2047 encoded words, returning the input unchanged if it cannot
// be decoded.
func DecodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// Parse decodes the headers and the first text body of rawMail. If a part cannot be read
// the message is returned with the fields decoded so far and a *PartError.
func Parse(rawMail []byte) (*Message, error) {
	mr, err := gomail.CreateReader(bytes.NewReader(rawMail))
	if err != nil {
		return nil, fmt.Errorf("could not parse mail: %w", err)
	}
	defer mr.Close()

	msg := &Message{}

	subject, err := mr.Header.Subject()
	if err != nil {
		subject = DecodeHeader(mr.Header.Get("Subject"))
	}
	msg.Subject = subject

	from, err := mr.Header.AddressList("From")
	if err == nil && len(from) > 0 {
		msg.From = from[0].Address
	}

	replyTo, err := mr.Header.AddressList("Reply-To")
	if err == nil {
		for _, a := range replyTo {
			msg.ReplyTo = append(msg.ReplyTo, a.Address)
		}
	}

	date, err := mr.Header.Date()
	if err == nil {
		msg.Date = date
	}

	var plain, htmlBody string
	partErr := readParts(mr, msg, &plain, &htmlBody)

	msg.Body = plain
	if len(strings.TrimSpace(msg.Body)) == 0 {
		msg.Body = htmlBody
	}

	if partErr != nil {
		return msg, &PartError{err: partErr}
	}
	return msg, nil
}

// PartError is returned together with a message whose headers were decoded but whose
// parts could not all be read.
type PartError struct {
	err error
}

func (e *PartError) Error() string {
	return e.err.Error()
}

func (e *PartError) Unwrap() error {
	return e.err
}

func readParts(mr *gomail.Reader, msg *Message, plain, htmlBody *string) error {
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return fmt.Errorf("could not read mail part: %w", err)
		}

		h, ok := p.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, err := h.ContentType()
		if err != nil {
			continue
		}

		switch contentType {
		case "text/calendar":
			msg.Calendar = true
		case "text/plain":
			if len(*plain) > 0 {
				continue
			}
			body, err := io.ReadAll(p.Body)
			if err != nil {
				return fmt.Errorf("could not read text body: %w", err)
			}
			*plain = string(body)
		case "text/html":
			if len(*htmlBody) > 0 {
				continue
			}
			body, err := io.ReadAll(p.Body)
			if err != nil {
				return fmt.Errorf("could not read html body: %w", err)
			}
			*htmlBody = HtmlText(string(body))
		}
	}
}

// HtmlText returns the visible text of an html document, one line per block of text.
func HtmlText(document string) string {
	z := html.NewTokenizer(strings.NewReader(document))

	lines := []string{}
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(lines, "\n")
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.Join(strings.Fields(string(z.Text())), " ")
			if len(text) > 0 {
				lines = append(lines, text)
			}
		}
	}
}

func ShortSubject(subject string) string {
	runes := []rune(subject)
	if len(runes) > 30 {
		subject = string(runes[:30]) + "..."
	}
	return subject
}
