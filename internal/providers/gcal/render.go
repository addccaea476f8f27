package gcal

import (
	"fmt"
	"strings"

	"github.com/nimbuslab/gtools/internal/render"
)

// RenderEvent renders one event, used for create/get/update results.
func RenderEvent(title string, ev *Event) string {
	doc := render.New(title)
	doc.Fieldf("Summary", "%s", ev.Summary)
	doc.Fieldf("Start", "%s%s", ev.Start, allDaySuffix(ev.AllDay))
	if ev.End != "" {
		doc.Fieldf("End", "%s", ev.End)
	}
	if ev.Location != "" {
		doc.Fieldf("Location", "%s", ev.Location)
	}
	if ev.Status != "" {
		doc.Fieldf("Status", "%s", ev.Status)
	}
	doc.Fieldf("Event ID", "%s", ev.ID)
	if len(ev.Attendees) > 0 {
		doc.Fieldf("Attendees", "%s", strings.Join(ev.Attendees, ", "))
	}
	if ev.Description != "" {
		doc.Section("Description")
		doc.Linef("%s", ev.Description)
	}
	if ev.Link != "" {
		doc.Blank()
		doc.Linef("Link: %s", ev.Link)
	}
	return doc.String()
}

// RenderEvents renders a listing in start order.
func RenderEvents(calendarID string, events []Event) string {
	doc := render.New("Upcoming Events")
	doc.Fieldf("Calendar", "%s", calendarID)
	doc.Fieldf("Count", "%d", len(events))

	for i, ev := range events {
		summary := ev.Summary
		if summary == "" {
			summary = "(no title)"
		}
		doc.Subsection(fmt.Sprintf("%d. %s", i+1, summary))
		doc.Fieldf("Start", "%s%s", ev.Start, allDaySuffix(ev.AllDay))
		if ev.End != "" {
			doc.Fieldf("End", "%s", ev.End)
		}
		if ev.Location != "" {
			doc.Fieldf("Location", "%s", ev.Location)
		}
		doc.Fieldf("Event ID", "%s", ev.ID)
	}
	return doc.String()
}

// RenderDeleted acknowledges a deletion.
func RenderDeleted(calendarID, eventID string) string {
	doc := render.New("Event Deleted")
	doc.Fieldf("Calendar", "%s", calendarID)
	doc.Fieldf("Event ID", "%s", eventID)
	return doc.String()
}

// RenderCalendars renders the account's calendar list.
func RenderCalendars(calendars []CalendarInfo) string {
	doc := render.New("Calendars")
	for _, c := range calendars {
		if c.Primary {
			doc.Bulletf("%s (%s, primary)", c.Summary, c.ID)
		} else {
			doc.Bulletf("%s (%s)", c.Summary, c.ID)
		}
	}
	return doc.String()
}

func allDaySuffix(allDay bool) string {
	if allDay {
		return " (all day)"
	}
	return ""
}
