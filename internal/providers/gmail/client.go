// Package gmail implements the mailbox tools on top of the Gmail API
// client library. Authentication is an OAuth bundle resolved per invocation;
// token refresh is owned by the oauth2 transport, never by this package.
package gmail

import (
	"context"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

// The authenticated user's mailbox.
const me = "me"

// messageAPI is the slice of the Gmail surface the client needs; tests
// substitute a fake to exercise the batch behavior without a live mailbox.
type messageAPI interface {
	listIDs(ctx context.Context, query string, maxResults int64, labelIDs []string) ([]string, error)
	getMetadata(ctx context.Context, id string) (*gmailapi.Message, error)
	getFull(ctx context.Context, id string) (*gmailapi.Message, error)
	send(ctx context.Context, raw string) (*gmailapi.Message, error)
	listLabels(ctx context.Context) ([]*gmailapi.Label, error)
}

type Client struct {
	api messageAPI
}

// NewClient builds a Gmail client from a resolved OAuth bundle.
func NewClient(ctx context.Context, bundle *credentials.OAuthBundle) (*Client, error) {
	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(bundle.Client(ctx)))
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to create gmail service")
	}
	return &Client{api: &liveAPI{svc: svc}}, nil
}

func newClientWithAPI(api messageAPI) *Client {
	return &Client{api: api}
}

type liveAPI struct {
	svc *gmailapi.Service
}

func (a *liveAPI) listIDs(ctx context.Context, query string, maxResults int64, labelIDs []string) ([]string, error) {
	call := a.svc.Users.Messages.List(me).MaxResults(maxResults).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}
	if len(labelIDs) > 0 {
		call = call.LabelIds(labelIDs...)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (a *liveAPI) getMetadata(ctx context.Context, id string) (*gmailapi.Message, error) {
	return a.svc.Users.Messages.Get(me, id).
		Format("metadata").
		MetadataHeaders("From", "To", "Subject", "Date").
		Context(ctx).
		Do()
}

func (a *liveAPI) getFull(ctx context.Context, id string) (*gmailapi.Message, error) {
	return a.svc.Users.Messages.Get(me, id).Format("full").Context(ctx).Do()
}

func (a *liveAPI) send(ctx context.Context, raw string) (*gmailapi.Message, error) {
	return a.svc.Users.Messages.Send(me, &gmailapi.Message{Raw: raw}).Context(ctx).Do()
}

func (a *liveAPI) listLabels(ctx context.Context) ([]*gmailapi.Label, error) {
	resp, err := a.svc.Users.Labels.List(me).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Labels, nil
}
