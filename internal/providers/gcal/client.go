// Package gcal implements the calendar tools on the Google Calendar API
// client library. As with the mailbox, the OAuth bundle is resolved per
// invocation and refresh is delegated to the oauth2 transport.
package gcal

import (
	"context"

	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

// calendarAPI is the slice of the Calendar surface the client needs; tests
// substitute a fake.
type calendarAPI interface {
	insert(ctx context.Context, calendarID string, ev *calendarapi.Event) (*calendarapi.Event, error)
	list(ctx context.Context, calendarID string, p ListParams) ([]*calendarapi.Event, error)
	get(ctx context.Context, calendarID, eventID string) (*calendarapi.Event, error)
	patch(ctx context.Context, calendarID, eventID string, ev *calendarapi.Event) (*calendarapi.Event, error)
	delete(ctx context.Context, calendarID, eventID string) error
	listCalendars(ctx context.Context) ([]*calendarapi.CalendarListEntry, error)
}

type Client struct {
	api calendarAPI
}

// NewClient builds a Calendar client from a resolved OAuth bundle.
func NewClient(ctx context.Context, bundle *credentials.OAuthBundle) (*Client, error) {
	svc, err := calendarapi.NewService(ctx, option.WithHTTPClient(bundle.Client(ctx)))
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to create calendar service")
	}
	return &Client{api: &liveAPI{svc: svc}}, nil
}

func newClientWithAPI(api calendarAPI) *Client {
	return &Client{api: api}
}

type liveAPI struct {
	svc *calendarapi.Service
}

func (a *liveAPI) insert(ctx context.Context, calendarID string, ev *calendarapi.Event) (*calendarapi.Event, error) {
	return a.svc.Events.Insert(calendarID, ev).Context(ctx).Do()
}

func (a *liveAPI) list(ctx context.Context, calendarID string, p ListParams) ([]*calendarapi.Event, error) {
	call := a.svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(p.MaxResults).
		Context(ctx)
	if p.TimeMin != "" {
		call = call.TimeMin(p.TimeMin)
	}
	if p.TimeMax != "" {
		call = call.TimeMax(p.TimeMax)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (a *liveAPI) get(ctx context.Context, calendarID, eventID string) (*calendarapi.Event, error) {
	return a.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
}

func (a *liveAPI) patch(ctx context.Context, calendarID, eventID string, ev *calendarapi.Event) (*calendarapi.Event, error) {
	return a.svc.Events.Patch(calendarID, eventID, ev).Context(ctx).Do()
}

func (a *liveAPI) delete(ctx context.Context, calendarID, eventID string) error {
	return a.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

func (a *liveAPI) listCalendars(ctx context.Context) ([]*calendarapi.CalendarListEntry, error) {
	resp, err := a.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}
