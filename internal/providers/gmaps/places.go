package gmaps

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/nimbuslab/gtools/internal/providers/fieldres"
	"github.com/nimbuslab/gtools/internal/render"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

const (
	searchEmptyMessage  = "No places found matching the query."
	detailsEmptyMessage = "No details found for the given place."
)

// TextSearchParams is the provider call shape for a places text search.
// Location and Radius are optional and omitted from the query when unset.
type TextSearchParams struct {
	Query  string
	Lat    float64
	Lng    float64
	HasLoc bool
	Radius int
}

// Place is one normalized text-search hit.
type Place struct {
	Name        string
	Address     string
	PlaceID     string
	Rating      float64
	RatingCount int64
	PriceLevel  int64
	HasPrice    bool
	OpenNow     *bool
}

// PlaceDetails is the normalized detail record for one place.
type PlaceDetails struct {
	Name        string
	Address     string
	Phone       string
	Website     string
	Rating      float64
	RatingCount int64
	MapsURL     string
	OpenNow     *bool
	Hours       []string
}

func buildTextSearchQuery(p TextSearchParams) url.Values {
	params := url.Values{}
	params.Set("query", p.Query)
	if p.HasLoc {
		params.Set("location", fmt.Sprintf("%v,%v", p.Lat, p.Lng))
	}
	if p.Radius > 0 {
		params.Set("radius", strconv.Itoa(p.Radius))
	}
	return params
}

func buildDetailsQuery(placeID string) url.Values {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,formatted_address,formatted_phone_number,website,rating,user_ratings_total,opening_hours,url")
	return params
}

// TextSearch runs a places text search and returns up to maxResults
// normalized hits, in provider order.
func (c *Client) TextSearch(ctx context.Context, p TextSearchParams, maxResults int) ([]Place, error) {
	body, err := c.get(ctx, "/place/textsearch/json", buildTextSearchQuery(p))
	if err != nil {
		return nil, err
	}
	return normalizePlaces(body, maxResults)
}

// PlaceDetailsOp fetches the detail record for one place id.
func (c *Client) PlaceDetailsOp(ctx context.Context, placeID string) (*PlaceDetails, error) {
	body, err := c.get(ctx, "/place/details/json", buildDetailsQuery(placeID))
	if err != nil {
		return nil, err
	}
	return normalizePlaceDetails(body)
}

func normalizePlaces(body []byte, maxResults int) ([]Place, error) {
	if err := checkStatus(body, searchEmptyMessage); err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results").Array()
	if len(results) == 0 {
		return nil, toolerr.EmptyResult(searchEmptyMessage)
	}
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		p := Place{
			Name:        r.Get("name").String(),
			Address:     fieldres.FirstString(r, "formatted_address", "vicinity"),
			PlaceID:     r.Get("place_id").String(),
			Rating:      r.Get("rating").Float(),
			RatingCount: r.Get("user_ratings_total").Int(),
		}
		if pl := r.Get("price_level"); pl.Exists() {
			p.PriceLevel = pl.Int()
			p.HasPrice = true
		}
		if open := r.Get("opening_hours.open_now"); open.Exists() {
			v := open.Bool()
			p.OpenNow = &v
		}
		places = append(places, p)
	}
	return places, nil
}

func normalizePlaceDetails(body []byte) (*PlaceDetails, error) {
	if err := checkStatus(body, detailsEmptyMessage); err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "result")
	if !result.Exists() {
		return nil, toolerr.EmptyResult(detailsEmptyMessage)
	}

	d := &PlaceDetails{
		Name:        result.Get("name").String(),
		Address:     fieldres.FirstString(result, "formatted_address", "vicinity"),
		Phone:       fieldres.FirstString(result, "formatted_phone_number", "international_phone_number"),
		Website:     result.Get("website").String(),
		Rating:      result.Get("rating").Float(),
		RatingCount: result.Get("user_ratings_total").Int(),
		MapsURL:     result.Get("url").String(),
	}
	if open := result.Get("opening_hours.open_now"); open.Exists() {
		v := open.Bool()
		d.OpenNow = &v
	}
	for _, line := range result.Get("opening_hours.weekday_text").Array() {
		d.Hours = append(d.Hours, line.String())
	}

	if d.Name == "" && d.Address == "" {
		return nil, toolerr.EmptyResult(detailsEmptyMessage)
	}
	return d, nil
}

// RenderPlaces renders a list of text-search hits.
func RenderPlaces(query string, places []Place) string {
	doc := render.New("Place Search Results")
	doc.Fieldf("Query", "%s", query)
	doc.Fieldf("Matches", "%d", len(places))

	for i, p := range places {
		doc.Subsection(fmt.Sprintf("%d. %s", i+1, p.Name))
		if p.Address != "" {
			doc.Fieldf("Address", "%s", p.Address)
		}
		if p.Rating > 0 {
			doc.Fieldf("Rating", "%.1f (%d reviews)", p.Rating, p.RatingCount)
		}
		if p.HasPrice {
			doc.Fieldf("Price level", "%d/4", p.PriceLevel)
		}
		if p.OpenNow != nil {
			doc.Fieldf("Open now", "%s", yesNo(*p.OpenNow))
		}
		if p.PlaceID != "" {
			doc.Fieldf("Place ID", "%s", p.PlaceID)
		}
	}
	return doc.String()
}

// RenderPlaceDetails renders one detail record.
func RenderPlaceDetails(d *PlaceDetails) string {
	doc := render.New("Place Details")
	doc.Fieldf("Name", "%s", d.Name)
	if d.Address != "" {
		doc.Fieldf("Address", "%s", d.Address)
	}
	if d.Phone != "" {
		doc.Fieldf("Phone", "%s", d.Phone)
	}
	if d.Website != "" {
		doc.Fieldf("Website", "%s", d.Website)
	}
	if d.Rating > 0 {
		doc.Fieldf("Rating", "%.1f (%d reviews)", d.Rating, d.RatingCount)
	}
	if d.OpenNow != nil {
		doc.Fieldf("Open now", "%s", yesNo(*d.OpenNow))
	}
	if len(d.Hours) > 0 {
		doc.Section("Opening Hours")
		for _, line := range d.Hours {
			doc.Bulletf("%s", line)
		}
	}
	if d.MapsURL != "" {
		doc.Blank()
		doc.Linef("Map: %s", d.MapsURL)
	}
	return doc.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
