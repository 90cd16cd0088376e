// SPDX-License-Identifier: GPL-3.0-or-later
package classifier

import (
	"strings"

	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/rules"
)

// Body keywords marking a message that asks for or carries a reply.
var returnKeywords = []string{"resposta", "retorno"}

type Classification struct {
	Record domain.ClassifiedRecord
	// SenderCategory is the category matched by sender rules, before subject rules are
	// applied. Only this category is counted per run.
	SenderCategory string
}

func Classify(msg *domain.RawMessage, rs *rules.RuleSet) Classification {
	senderCategory := rs.CategoryForSender(msg.SenderAddress)

	category := senderCategory
	if subjectCategory := rs.CategoryForSubject(msg.Subject); len(subjectCategory) > 0 {
		category = subjectCategory
	}

	return Classification{
		Record: domain.ClassifiedRecord{
			Subject:  msg.Subject,
			Sender:   msg.SenderAddress,
			Status:   Status(msg),
			Category: category,
		},
		SenderCategory: senderCategory,
	}
}

func Status(msg *domain.RawMessage) domain.Status {
	if Replied(msg) {
		return domain.ReturnSent
	}

	body := strings.ToLower(msg.Body)
	for _, k := range returnKeywords {
		if strings.Contains(body, k) {
			return domain.ReturnPending
		}
	}

	return domain.NewMail
}

func Replied(msg *domain.RawMessage) bool {
	if msg.Sent {
		return true
	}

	if len(msg.SenderAddress) == 0 {
		return false
	}
	for _, r := range msg.ReplyRecipients {
		if strings.EqualFold(strings.TrimSpace(r), strings.TrimSpace(msg.SenderAddress)) {
			return true
		}
	}
	return false
}
