package gcal

import (
	"context"

	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/nimbuslab/gtools/internal/toolerr"
)

const eventsEmptyMessage = "No events found in the given time range."

// EventParams is the call shape for creating or updating an event. On
// update, zero-valued fields are left untouched rather than cleared.
type EventParams struct {
	Summary     string
	Description string
	Location    string
	Start       string // RFC 3339 datetime, or YYYY-MM-DD for all-day
	End         string
	TimeZone    string
	Attendees   []string
}

// ListParams is the call shape for listing events.
type ListParams struct {
	TimeMin    string
	TimeMax    string
	MaxResults int64
}

// Event is the normalized view of one calendar event. Start and End have
// been resolved through both provider time shapes (dateTime and all-day
// date).
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       string
	End         string
	AllDay      bool
	Status      string
	Attendees   []string
	Link        string
}

// CreateEvent inserts an event into the given calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, p EventParams) (*Event, error) {
	created, err := c.api.insert(ctx, calendarID, buildEvent(p))
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to create event")
	}
	return normalizeEvent(created), nil
}

// ListEvents returns upcoming events in start order.
func (c *Client) ListEvents(ctx context.Context, calendarID string, p ListParams) ([]Event, error) {
	items, err := c.api.list(ctx, calendarID, p)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to list events")
	}
	if len(items) == 0 {
		return nil, toolerr.EmptyResult(eventsEmptyMessage)
	}
	events := make([]Event, 0, len(items))
	for _, item := range items {
		events = append(events, *normalizeEvent(item))
	}
	return events, nil
}

// GetEvent fetches one event by id.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	item, err := c.api.get(ctx, calendarID, eventID)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to fetch event %s", eventID)
	}
	return normalizeEvent(item), nil
}

// UpdateEvent patches only the fields supplied in p.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, p EventParams) (*Event, error) {
	updated, err := c.api.patch(ctx, calendarID, eventID, buildEvent(p))
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to update event %s", eventID)
	}
	return normalizeEvent(updated), nil
}

// DeleteEvent removes one event.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.api.delete(ctx, calendarID, eventID); err != nil {
		return toolerr.WrapProvider(err, "failed to delete event %s", eventID)
	}
	return nil
}

// buildEvent maps params to the provider shape, leaving unsupplied fields
// nil so a patch does not clear them.
func buildEvent(p EventParams) *calendarapi.Event {
	ev := &calendarapi.Event{
		Summary:     p.Summary,
		Description: p.Description,
		Location:    p.Location,
	}
	if p.Start != "" {
		ev.Start = buildEventTime(p.Start, p.TimeZone)
	}
	if p.End != "" {
		ev.End = buildEventTime(p.End, p.TimeZone)
	}
	for _, email := range p.Attendees {
		ev.Attendees = append(ev.Attendees, &calendarapi.EventAttendee{Email: email})
	}
	return ev
}

// buildEventTime treats a bare date as all-day and anything else as an
// RFC 3339 datetime.
func buildEventTime(value, timeZone string) *calendarapi.EventDateTime {
	if len(value) == len("2006-01-02") {
		return &calendarapi.EventDateTime{Date: value}
	}
	return &calendarapi.EventDateTime{DateTime: value, TimeZone: timeZone}
}

func normalizeEvent(item *calendarapi.Event) *Event {
	ev := &Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      item.Status,
		Link:        item.HtmlLink,
	}
	ev.Start, ev.AllDay = normalizeEventTime(item.Start)
	ev.End, _ = normalizeEventTime(item.End)
	for _, a := range item.Attendees {
		if a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}
	return ev
}

// normalizeEventTime resolves the two provider time shapes: a timed event
// carries dateTime, an all-day event carries date.
func normalizeEventTime(t *calendarapi.EventDateTime) (value string, allDay bool) {
	if t == nil {
		return "", false
	}
	if t.DateTime != "" {
		return t.DateTime, false
	}
	return t.Date, t.Date != ""
}
