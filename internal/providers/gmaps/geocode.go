package gmaps

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/nimbuslab/gtools/internal/providers/fieldres"
	"github.com/nimbuslab/gtools/internal/render"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

const (
	geocodeEmptyMessage = "No results found for the given address."
	reverseEmptyMessage = "No results found for the given coordinates."
)

// GeocodeResult is the normalized form of one geocoding match.
type GeocodeResult struct {
	Address string
	Lat     float64
	Lng     float64
	PlaceID string
	Types   []string
	// Partial marks an inexact provider match.
	Partial bool
}

func buildGeocodeQuery(address string) url.Values {
	params := url.Values{}
	params.Set("address", address)
	return params
}

func buildReverseQuery(lat, lng float64) url.Values {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%v,%v", lat, lng))
	return params
}

// Geocode resolves a street address to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	body, err := c.get(ctx, "/geocode/json", buildGeocodeQuery(address))
	if err != nil {
		return nil, err
	}
	return normalizeGeocode(body, geocodeEmptyMessage)
}

// ReverseGeocode resolves coordinates to the nearest address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResult, error) {
	body, err := c.get(ctx, "/geocode/json", buildReverseQuery(lat, lng))
	if err != nil {
		return nil, err
	}
	return normalizeGeocode(body, reverseEmptyMessage)
}

// normalizeGeocode takes the first result as the primary record. The address
// resolves through formatted_address, then the places-style name; location
// through geometry.location.
func normalizeGeocode(body []byte, emptyMessage string) (*GeocodeResult, error) {
	if err := checkStatus(body, emptyMessage); err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() || len(results.Array()) == 0 {
		return nil, toolerr.EmptyResult(emptyMessage)
	}
	first := results.Array()[0]

	out := &GeocodeResult{
		Address: fieldres.FirstString(first, "formatted_address", "name"),
		PlaceID: first.Get("place_id").String(),
		Partial: first.Get("partial_match").Bool(),
	}
	out.Lat, _ = fieldres.FirstFloat(first, "geometry.location.lat")
	out.Lng, _ = fieldres.FirstFloat(first, "geometry.location.lng")
	for _, t := range first.Get("types").Array() {
		out.Types = append(out.Types, t.String())
	}

	if out.Address == "" && out.PlaceID == "" {
		return nil, toolerr.EmptyResult(emptyMessage)
	}
	return out, nil
}

// RenderGeocode renders one normalized geocoding result.
func RenderGeocode(r *GeocodeResult) string {
	doc := render.New("Geocoding Result")
	doc.Fieldf("Address", "%s", r.Address)
	doc.Fieldf("Coordinates", "%v, %v", r.Lat, r.Lng)
	if r.PlaceID != "" {
		doc.Fieldf("Place ID", "%s", r.PlaceID)
	}
	if len(r.Types) > 0 {
		doc.Fieldf("Types", "%v", r.Types)
	}
	if r.Partial {
		doc.Linef("Note: the provider reported a partial match.")
	}
	return doc.String()
}
