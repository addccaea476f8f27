package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/providers/gmail"
	"github.com/nimbuslab/gtools/internal/schema"
)

// mailClient is the provider surface the mailbox tools use.
type mailClient interface {
	Send(ctx context.Context, p gmail.SendParams) (*gmail.SentInfo, error)
	List(ctx context.Context, p gmail.ListParams) ([]gmail.MessageSummary, error)
	Get(ctx context.Context, id string) (*gmail.Message, error)
	ListLabels(ctx context.Context) ([]gmail.Label, error)
}

// mailToolset shares config and a client factory across the mailbox tools.
// Like the maps toolset, the factory runs only after the OAuth bundle
// resolves completely.
type mailToolset struct {
	cfg       *config.Config
	newClient func(ctx context.Context, bundle *credentials.OAuthBundle) (mailClient, error)
}

// NewMailTools returns the mailbox tools.
func NewMailTools(cfg *config.Config) []Tool {
	return newMailToolset(cfg, func(ctx context.Context, bundle *credentials.OAuthBundle) (mailClient, error) {
		return gmail.NewClient(ctx, bundle)
	})
}

func newMailToolset(cfg *config.Config, factory func(context.Context, *credentials.OAuthBundle) (mailClient, error)) []Tool {
	ts := &mailToolset{cfg: cfg, newClient: factory}
	return []Tool{
		&mailSendTool{ts},
		&mailListTool{ts},
		&mailGetTool{ts},
		&mailLabelsTool{ts},
	}
}

func (ts *mailToolset) client(ctx context.Context) (mailClient, error) {
	cred, err := credentials.Resolve(ts.cfg, credentials.KindGoogleOAuth)
	if err != nil {
		return nil, err
	}
	return ts.newClient(ctx, cred.OAuth)
}

// --- mail_send ---

type mailSendTool struct{ *mailToolset }

var mailSendParams = schema.Object{Fields: map[string]schema.Field{
	"to":      {Type: schema.TypeString, Required: true, Description: "Recipient address"},
	"subject": {Type: schema.TypeString, Required: true, Description: "Subject line"},
	"body":    {Type: schema.TypeString, Required: true, Description: "Plain-text message body"},
	"cc":      {Type: schema.TypeString, Description: "Cc addresses, comma separated"},
	"bcc":     {Type: schema.TypeString, Description: "Bcc addresses, comma separated"},
}}

func (t *mailSendTool) Definition() mcp.Tool {
	return definition("mail_send", "Send an email from the authenticated account", mailSendParams)
}

func (t *mailSendTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "mail_send", mailSendParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		sent, err := client.Send(ctx, gmail.SendParams{
			To:      r.String("to"),
			Subject: r.String("subject"),
			Body:    r.String("body"),
			CC:      r.String("cc"),
			BCC:     r.String("bcc"),
		})
		if err != nil {
			return "", err
		}
		return gmail.RenderSent(sent), nil
	})
}

// --- mail_list ---

type mailListTool struct{ *mailToolset }

var mailListParams = schema.Object{Fields: map[string]schema.Field{
	"query": {Type: schema.TypeString,
		Description: "Mailbox search query, e.g. \"is:unread from:alice\""},
	"max_results": {Type: schema.TypeInteger, Default: 10,
		Description: "Maximum messages to return"},
	"label_ids": {Type: schema.TypeStringArray,
		Description: "Restrict to messages carrying all of these label ids"},
}}

func (t *mailListTool) Definition() mcp.Tool {
	return definition("mail_list", "List recent messages matching a query", mailListParams)
}

func (t *mailListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "mail_list", mailListParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		summaries, err := client.List(ctx, gmail.ListParams{
			Query:      r.String("query"),
			MaxResults: int64(r.Int("max_results")),
			LabelIDs:   r.Strings("label_ids"),
		})
		if err != nil {
			return "", err
		}
		return gmail.RenderList(summaries), nil
	})
}

// --- mail_get ---

type mailGetTool struct{ *mailToolset }

var mailGetParams = schema.Object{Fields: map[string]schema.Field{
	"message_id": {Type: schema.TypeString, Required: true,
		Description: "Message id from a previous listing"},
}}

func (t *mailGetTool) Definition() mcp.Tool {
	return definition("mail_get", "Read one message in full", mailGetParams)
}

func (t *mailGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "mail_get", mailGetParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		msg, err := client.Get(ctx, r.String("message_id"))
		if err != nil {
			return "", err
		}
		return gmail.RenderMessage(msg), nil
	})
}

// --- mail_list_labels ---

type mailLabelsTool struct{ *mailToolset }

var mailLabelsParams = schema.Object{Fields: map[string]schema.Field{}}

func (t *mailLabelsTool) Definition() mcp.Tool {
	return definition("mail_list_labels", "List the mailbox's labels", mailLabelsParams)
}

func (t *mailLabelsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "mail_list_labels", mailLabelsParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		labels, err := client.ListLabels(ctx)
		if err != nil {
			return "", err
		}
		return gmail.RenderLabels(labels), nil
	})
}
