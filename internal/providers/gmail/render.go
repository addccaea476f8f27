package gmail

import (
	"fmt"
	"strings"

	"github.com/nimbuslab/gtools/internal/render"
)

// RenderSent acknowledges a sent message.
func RenderSent(s *SentInfo) string {
	doc := render.New("Message Sent")
	doc.Fieldf("To", "%s", s.To)
	doc.Fieldf("Subject", "%s", s.Subject)
	doc.Fieldf("Message ID", "%s", s.ID)
	if s.ThreadID != "" {
		doc.Fieldf("Thread ID", "%s", s.ThreadID)
	}
	return doc.String()
}

// RenderList renders message summaries in mailbox order.
func RenderList(summaries []MessageSummary) string {
	doc := render.New("Messages")
	doc.Fieldf("Count", "%d", len(summaries))

	for i, s := range summaries {
		subject := s.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		doc.Subsection(fmt.Sprintf("%d. %s", i+1, subject))
		if s.From != "" {
			doc.Fieldf("From", "%s", s.From)
		}
		if s.Date != "" {
			doc.Fieldf("Date", "%s", s.Date)
		}
		doc.Fieldf("ID", "%s", s.ID)
		if s.Snippet != "" {
			doc.Linef("%s", s.Snippet)
		}
	}
	return doc.String()
}

// RenderMessage renders one full message.
func RenderMessage(m *Message) string {
	subject := m.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	doc := render.New(subject)
	doc.Fieldf("From", "%s", m.From)
	if m.To != "" {
		doc.Fieldf("To", "%s", m.To)
	}
	if m.CC != "" {
		doc.Fieldf("Cc", "%s", m.CC)
	}
	if m.Date != "" {
		doc.Fieldf("Date", "%s", m.Date)
	}
	doc.Fieldf("ID", "%s", m.ID)
	if len(m.LabelIDs) > 0 {
		doc.Fieldf("Labels", "%s", strings.Join(m.LabelIDs, ", "))
	}

	doc.Section("Body")
	if m.Body != "" {
		doc.Linef("%s", m.Body)
	} else if m.Snippet != "" {
		doc.Linef("%s", m.Snippet)
	}
	return doc.String()
}

// RenderLabels renders labels grouped into system and user sections.
func RenderLabels(labels []Label) string {
	doc := render.New("Mailbox Labels")

	var system, user []Label
	for _, l := range labels {
		if l.Type == "system" {
			system = append(system, l)
		} else {
			user = append(user, l)
		}
	}

	if len(system) > 0 {
		doc.Section("System Labels")
		for _, l := range system {
			doc.Bulletf("%s (%s)", l.Name, l.ID)
		}
	}
	if len(user) > 0 {
		doc.Section("User Labels")
		for _, l := range user {
			doc.Bulletf("%s (%s)", l.Name, l.ID)
		}
	}
	return doc.String()
}
