package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/nimbuslab/gtools/internal/toolerr"
)

const listEmptyMessage = "No messages found matching the query."

// SendParams is the call shape for sending a message. CC and BCC headers are
// omitted entirely when empty rather than sent blank.
type SendParams struct {
	To      string
	Subject string
	Body    string
	CC      string
	BCC     string
}

// SentInfo is the normalized acknowledgement of a send.
type SentInfo struct {
	ID       string
	ThreadID string
	To       string
	Subject  string
}

// ListParams is the call shape for listing messages.
type ListParams struct {
	Query      string
	MaxResults int64
	LabelIDs   []string
}

// MessageSummary is the normalized metadata view of one message.
type MessageSummary struct {
	ID      string
	From    string
	Subject string
	Date    string
	Snippet string
}

// Message is the normalized full view of one message.
type Message struct {
	ID       string
	ThreadID string
	From     string
	To       string
	CC       string
	Subject  string
	Date     string
	Snippet  string
	Body     string
	LabelIDs []string
}

// Label is one normalized mailbox label.
type Label struct {
	ID   string
	Name string
	Type string // "system" or "user"
}

// Send composes an RFC 2822 message and sends it as the authenticated user.
func (c *Client) Send(ctx context.Context, p SendParams) (*SentInfo, error) {
	sent, err := c.api.send(ctx, encodeMessage(p))
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to send message")
	}
	return &SentInfo{
		ID:       sent.Id,
		ThreadID: sent.ThreadId,
		To:       p.To,
		Subject:  p.Subject,
	}, nil
}

func encodeMessage(p SendParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", p.To)
	if p.CC != "" {
		fmt.Fprintf(&b, "Cc: %s\r\n", p.CC)
	}
	if p.BCC != "" {
		fmt.Fprintf(&b, "Bcc: %s\r\n", p.BCC)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", p.Subject)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(p.Body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// List enumerates matching message ids, then fetches metadata for every id
// in one concurrent batch bounded by MaxResults. The batch is all or
// nothing: if any single fetch fails the whole invocation fails, and
// summaries keep the provider's list order regardless of fetch completion
// order.
func (c *Client) List(ctx context.Context, p ListParams) ([]MessageSummary, error) {
	ids, err := c.api.listIDs(ctx, p.Query, p.MaxResults, p.LabelIDs)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to list messages")
	}
	if len(ids) == 0 {
		return nil, toolerr.EmptyResult(listEmptyMessage)
	}

	summaries := make([]MessageSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			msg, err := c.api.getMetadata(gctx, id)
			if err != nil {
				return fmt.Errorf("message %s: %w", id, err)
			}
			summaries[i] = normalizeSummary(msg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, toolerr.WrapProvider(err, "failed to fetch message details")
	}
	return summaries, nil
}

// Get fetches one message in full and normalizes its headers and body.
func (c *Client) Get(ctx context.Context, id string) (*Message, error) {
	msg, err := c.api.getFull(ctx, id)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to fetch message %s", id)
	}
	return normalizeMessage(msg), nil
}

// ListLabels returns the mailbox's labels, system labels first.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	raw, err := c.api.listLabels(ctx)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to list labels")
	}
	if len(raw) == 0 {
		return nil, toolerr.EmptyResult("No labels found in the mailbox.")
	}

	var system, user []Label
	for _, l := range raw {
		label := Label{ID: l.Id, Name: l.Name, Type: strings.ToLower(l.Type)}
		if label.Type == "system" {
			system = append(system, label)
		} else {
			user = append(user, label)
		}
	}
	return append(system, user...), nil
}

func normalizeSummary(msg *gmailapi.Message) MessageSummary {
	return MessageSummary{
		ID:      msg.Id,
		From:    header(msg, "From"),
		Subject: header(msg, "Subject"),
		Date:    header(msg, "Date"),
		Snippet: msg.Snippet,
	}
}
