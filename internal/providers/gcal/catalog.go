package gcal

import (
	"context"

	"github.com/nimbuslab/gtools/internal/toolerr"
)

// CalendarInfo is one entry of the account's calendar list.
type CalendarInfo struct {
	ID      string
	Summary string
	Primary bool
}

// Catalog is an immutable snapshot of the available calendars, produced
// once during startup and passed by reference into tool constructors. It is
// only ever read after construction. The snapshot feeds human-readable
// parameter descriptions; calendar ids are never validated against it, and
// an unrecognized id is passed through for the provider to reject.
type Catalog struct {
	entries []CalendarInfo
}

// NewCatalog freezes a fixed entry list, for callers that already know the
// available calendars.
func NewCatalog(entries []CalendarInfo) *Catalog {
	cat := &Catalog{entries: make([]CalendarInfo, len(entries))}
	copy(cat.entries, entries)
	return cat
}

// LoadCatalog lists the account's calendars and freezes the result.
func (c *Client) LoadCatalog(ctx context.Context) (*Catalog, error) {
	items, err := c.api.listCalendars(ctx)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to list calendars")
	}
	cat := &Catalog{}
	for _, item := range items {
		cat.entries = append(cat.entries, CalendarInfo{
			ID:      item.Id,
			Summary: item.Summary,
			Primary: item.Primary,
		})
	}
	return cat, nil
}

// Entries returns a copy so callers cannot mutate the snapshot.
func (c *Catalog) Entries() []CalendarInfo {
	if c == nil {
		return nil
	}
	out := make([]CalendarInfo, len(c.entries))
	copy(out, c.entries)
	return out
}

// IDs returns the known calendar ids in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// ListCalendars is the tool-facing listing; unlike the catalog it reflects
// the provider's current state at call time.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	cat, err := c.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(cat.entries) == 0 {
		return nil, toolerr.EmptyResult("No calendars found for the account.")
	}
	return cat.Entries(), nil
}
