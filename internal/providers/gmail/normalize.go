package gmail

import (
	"encoding/base64"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/nimbuslab/gtools/internal/render"
)

// header resolves one named header from a message payload, case-insensitive
// the way providers actually send them.
func header(msg *gmailapi.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func normalizeMessage(msg *gmailapi.Message) *Message {
	return &Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     header(msg, "From"),
		To:       header(msg, "To"),
		CC:       header(msg, "Cc"),
		Subject:  header(msg, "Subject"),
		Date:     header(msg, "Date"),
		Snippet:  msg.Snippet,
		Body:     extractBody(msg.Payload),
		LabelIDs: msg.LabelIds,
	}
}

// extractBody resolves the message body through the payload's known shapes,
// in order: a direct body on the part, the first text/plain part anywhere in
// the multipart tree, then the first text/html part with tags stripped. An
// unrecognized payload yields an empty body, never an error.
func extractBody(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}
	if body := decodePart(payload); body != "" && !strings.HasPrefix(payload.MimeType, "multipart/") {
		if payload.MimeType == "text/html" {
			return render.StripHTML(body)
		}
		return body
	}
	if plain := findPart(payload, "text/plain"); plain != "" {
		return plain
	}
	if html := findPart(payload, "text/html"); html != "" {
		return render.StripHTML(html)
	}
	return ""
}

// findPart walks the part tree depth-first and returns the first decodable
// part of the wanted MIME type.
func findPart(part *gmailapi.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.MimeType == mimeType {
		if body := decodePart(part); body != "" {
			return body
		}
	}
	for _, child := range part.Parts {
		if body := findPart(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// decodePart decodes a part body, tolerating both padded and unpadded
// base64url, which the provider mixes.
func decodePart(part *gmailapi.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	if decoded, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(part.Body.Data); err == nil {
		return string(decoded)
	}
	return ""
}
