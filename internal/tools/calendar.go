package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/providers/gcal"
	"github.com/nimbuslab/gtools/internal/schema"
)

// calClient is the provider surface the calendar tools use.
type calClient interface {
	CreateEvent(ctx context.Context, calendarID string, p gcal.EventParams) (*gcal.Event, error)
	ListEvents(ctx context.Context, calendarID string, p gcal.ListParams) ([]gcal.Event, error)
	GetEvent(ctx context.Context, calendarID, eventID string) (*gcal.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, p gcal.EventParams) (*gcal.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error)
}

// calToolset shares config, the startup catalog snapshot, and a client
// factory across the calendar tools. The catalog is read-only: it feeds the
// calendar_id parameter description and nothing else; an id outside the
// catalog is passed through for the provider to accept or reject.
type calToolset struct {
	cfg       *config.Config
	catalog   *gcal.Catalog
	newClient func(ctx context.Context, bundle *credentials.OAuthBundle) (calClient, error)
}

// NewCalendarTools returns the calendar tools. catalog may be nil when the
// startup warm-up failed; descriptions then fall back to generic text.
func NewCalendarTools(cfg *config.Config, catalog *gcal.Catalog) []Tool {
	return newCalToolset(cfg, catalog, func(ctx context.Context, bundle *credentials.OAuthBundle) (calClient, error) {
		return gcal.NewClient(ctx, bundle)
	})
}

func newCalToolset(cfg *config.Config, catalog *gcal.Catalog, factory func(context.Context, *credentials.OAuthBundle) (calClient, error)) []Tool {
	ts := &calToolset{cfg: cfg, catalog: catalog, newClient: factory}
	return []Tool{
		&calCreateTool{ts},
		&calListTool{ts},
		&calGetTool{ts},
		&calUpdateTool{ts},
		&calDeleteTool{ts},
		&calCalendarsTool{ts},
	}
}

func (ts *calToolset) client(ctx context.Context) (calClient, error) {
	cred, err := credentials.Resolve(ts.cfg, credentials.KindGoogleOAuth)
	if err != nil {
		return nil, err
	}
	return ts.newClient(ctx, cred.OAuth)
}

func (ts *calToolset) calendarID(r *schema.Request) string {
	if id := r.String("calendar_id"); id != "" {
		return id
	}
	return ts.cfg.DefaultCalendarID
}

func (ts *calToolset) calendarIDField() schema.Field {
	return schema.Field{
		Type: schema.TypeString,
		Description: schema.Describe(
			"Calendar id; defaults to the primary calendar.", ts.catalog.IDs()),
	}
}

func eventFields(ts *calToolset, required bool) map[string]schema.Field {
	return map[string]schema.Field{
		"summary": {Type: schema.TypeString, Required: required, Description: "Event title"},
		"start": {Type: schema.TypeString, Required: required,
			Description: "Start time, RFC 3339 (2026-09-01T10:00:00-04:00) or YYYY-MM-DD for all-day"},
		"end": {Type: schema.TypeString, Required: required,
			Description: "End time, same formats as start"},
		"description": {Type: schema.TypeString, Description: "Event description"},
		"location":    {Type: schema.TypeString, Description: "Event location"},
		"attendees":   {Type: schema.TypeStringArray, Description: "Attendee email addresses"},
		"time_zone": {Type: schema.TypeString,
			Description: "IANA time zone for timed events, e.g. America/New_York"},
		"calendar_id": ts.calendarIDField(),
	}
}

func eventParamsFrom(r *schema.Request) gcal.EventParams {
	return gcal.EventParams{
		Summary:     r.String("summary"),
		Description: r.String("description"),
		Location:    r.String("location"),
		Start:       r.String("start"),
		End:         r.String("end"),
		TimeZone:    r.String("time_zone"),
		Attendees:   r.Strings("attendees"),
	}
}

// --- calendar_create_event ---

type calCreateTool struct{ *calToolset }

func (t *calCreateTool) params() schema.Object {
	return schema.Object{Fields: eventFields(t.calToolset, true)}
}

func (t *calCreateTool) Definition() mcp.Tool {
	return definition("calendar_create_event", "Create a calendar event", t.params())
}

func (t *calCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "calendar_create_event", t.params(), req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		ev, err := client.CreateEvent(ctx, t.calendarID(r), eventParamsFrom(r))
		if err != nil {
			return "", err
		}
		return gcal.RenderEvent("Event Created", ev), nil
	})
}

// --- calendar_list_events ---

type calListTool struct{ *calToolset }

func (t *calListTool) params() schema.Object {
	return schema.Object{Fields: map[string]schema.Field{
		"calendar_id": t.calendarIDField(),
		"time_min": {Type: schema.TypeString,
			Description: "Earliest event time, RFC 3339; defaults to the current time"},
		"time_max": {Type: schema.TypeString,
			Description: "Latest event time, RFC 3339"},
		"max_results": {Type: schema.TypeInteger, Default: 10,
			Description: "Maximum events to return"},
	}}
}

func (t *calListTool) Definition() mcp.Tool {
	return definition("calendar_list_events", "List upcoming calendar events", t.params())
}

func (t *calListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "calendar_list_events", t.params(), req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		// "Now" is computed per call, not captured at registration, so the
		// default stays correct for the life of the process.
		timeMin := r.String("time_min")
		if timeMin == "" {
			timeMin = time.Now().Format(time.RFC3339)
		}
		calendarID := t.calendarID(r)
		events, err := client.ListEvents(ctx, calendarID, gcal.ListParams{
			TimeMin:    timeMin,
			TimeMax:    r.String("time_max"),
			MaxResults: int64(r.Int("max_results")),
		})
		if err != nil {
			return "", err
		}
		return gcal.RenderEvents(calendarID, events), nil
	})
}

// --- calendar_get_event ---

type calGetTool struct{ *calToolset }

func (t *calGetTool) params() schema.Object {
	return schema.Object{Fields: map[string]schema.Field{
		"event_id":    {Type: schema.TypeString, Required: true, Description: "Event id"},
		"calendar_id": t.calendarIDField(),
	}}
}

func (t *calGetTool) Definition() mcp.Tool {
	return definition("calendar_get_event", "Fetch one calendar event", t.params())
}

func (t *calGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "calendar_get_event", t.params(), req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		ev, err := client.GetEvent(ctx, t.calendarID(r), r.String("event_id"))
		if err != nil {
			return "", err
		}
		return gcal.RenderEvent("Event", ev), nil
	})
}

// --- calendar_update_event ---

type calUpdateTool struct{ *calToolset }

func (t *calUpdateTool) params() schema.Object {
	fields := eventFields(t.calToolset, false)
	fields["event_id"] = schema.Field{Type: schema.TypeString, Required: true, Description: "Event id"}
	return schema.Object{Fields: fields}
}

func (t *calUpdateTool) Definition() mcp.Tool {
	return definition("calendar_update_event",
		"Update fields of an existing calendar event; omitted fields are left unchanged", t.params())
}

func (t *calUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "calendar_update_event", t.params(), req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		ev, err := client.UpdateEvent(ctx, t.calendarID(r), r.String("event_id"), eventParamsFrom(r))
		if err != nil {
			return "", err
		}
		return gcal.RenderEvent("Event Updated", ev), nil
	})
}

// --- calendar_delete_event ---

type calDeleteTool struct{ *calToolset }

func (t *calDeleteTool) params() schema.Object {
	return schema.Object{Fields: map[string]schema.Field{
		"event_id":    {Type: schema.TypeString, Required: true, Description: "Event id"},
		"calendar_id": t.calendarIDField(),
	}}
}

func (t *calDeleteTool) Definition() mcp.Tool {
	return definition("calendar_delete_event", "Delete a calendar event", t.params())
}

func (t *calDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "calendar_delete_event", t.params(), req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		calendarID := t.calendarID(r)
		eventID := r.String("event_id")
		if err := client.DeleteEvent(ctx, calendarID, eventID); err != nil {
			return "", err
		}
		return gcal.RenderDeleted(calendarID, eventID), nil
	})
}

// --- calendar_list_calendars ---

type calCalendarsTool struct{ *calToolset }

var calCalendarsParams = schema.Object{Fields: map[string]schema.Field{}}

func (t *calCalendarsTool) Definition() mcp.Tool {
	return definition("calendar_list_calendars", "List the account's calendars", calCalendarsParams)
}

func (t *calCalendarsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "calendar_list_calendars", calCalendarsParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client(ctx)
		if err != nil {
			return "", err
		}
		calendars, err := client.ListCalendars(ctx)
		if err != nil {
			return "", err
		}
		return gcal.RenderCalendars(calendars), nil
	})
}
