package serpapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nimbuslab/gtools/internal/providers/fieldres"
	"github.com/nimbuslab/gtools/internal/render"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

const flightsEmptyMessage = "No flights found for the given route and dates."

// Trip types accepted by the flight search tool, mapped to the engine's
// numeric type parameter.
const (
	TripRoundTrip = "round-trip"
	TripOneWay    = "one-way"
	TripMultiCity = "multi-city"
)

// FlightParams is the provider call shape for a google_flights query.
// Exactly one trip shape is in effect: round-trip requires ReturnDate,
// multi-city requires MultiCityJSON; the schema layer enforces this before
// the builder runs.
type FlightParams struct {
	DepartureID   string
	ArrivalID     string
	OutboundDate  string
	ReturnDate    string
	TripType      string
	MultiCityJSON string
}

// Segment is one flight leg of an itinerary, in departure order.
type Segment struct {
	Airline       string
	FlightNumber  string
	DepartureID   string
	DepartureName string
	DepartureTime string
	ArrivalID     string
	ArrivalName   string
	ArrivalTime   string
	Duration      int64 // minutes
}

// Itinerary is one candidate journey with its ordered segments.
type Itinerary struct {
	Segments []Segment
	Airlines []string
	Duration int64 // minutes, whole itinerary
	Stops    int
	Price    float64
	HasPrice bool
}

// FlightInsights is the engine's optional pricing context.
type FlightInsights struct {
	LowestPrice float64
	PriceLevel  string
	TypicalLow  float64
	TypicalHigh float64
	HasTypical  bool
}

// FlightResults is the normalized flight search outcome.
type FlightResults struct {
	Route        string
	OutboundDate string
	ReturnDate   string

	BestPrice    float64
	HasBestPrice bool

	Best     []Itinerary
	Other    []Itinerary
	Insights *FlightInsights
}

// FlightFlags are the caller's verbosity switches.
type FlightFlags struct {
	SummaryOnly     bool
	MaxResults      int // per bucket
	IncludeInsights bool
}

// ProjectedFlights is the flag-trimmed view. In summary mode itineraries
// keep their compact fields but carry no segments.
type ProjectedFlights struct {
	Results  *FlightResults
	Detailed bool

	Best     []Itinerary
	Other    []Itinerary
	Insights *FlightInsights
}

func buildFlightsQuery(p FlightParams) url.Values {
	params := url.Values{}
	switch p.TripType {
	case TripMultiCity:
		params.Set("type", "3")
		params.Set("multi_city_json", p.MultiCityJSON)
	case TripOneWay:
		params.Set("type", "2")
	default:
		params.Set("type", "1")
	}

	if p.TripType != TripMultiCity {
		params.Set("departure_id", p.DepartureID)
		params.Set("arrival_id", p.ArrivalID)
		params.Set("outbound_date", p.OutboundDate)
		if p.ReturnDate != "" {
			params.Set("return_date", p.ReturnDate)
		}
	}
	return params
}

// FlightSearch runs the query and returns normalized results.
func (c *Client) FlightSearch(ctx context.Context, p FlightParams) (*FlightResults, error) {
	body, err := c.search(ctx, "google_flights", buildFlightsQuery(p))
	if err != nil {
		return nil, err
	}
	results, err := NormalizeFlights(body)
	if err != nil {
		return nil, err
	}
	results.Route = describeRoute(p)
	results.OutboundDate = p.OutboundDate
	results.ReturnDate = p.ReturnDate
	return results, nil
}

func describeRoute(p FlightParams) string {
	if p.TripType == TripMultiCity {
		return "multi-city itinerary"
	}
	return fmt.Sprintf("%s to %s", p.DepartureID, p.ArrivalID)
}

// NormalizeFlights extracts both itinerary buckets and the optional price
// insights. The headline price resolves from the first best-flights entry
// before price_insights.lowest_price, and falls back to the first
// other-flights entry; an itinerary price of zero counts as absent.
func NormalizeFlights(body []byte) (*FlightResults, error) {
	doc := gjson.ParseBytes(body)

	results := &FlightResults{
		Best:  normalizeBucket(doc.Get("best_flights").Array()),
		Other: normalizeBucket(doc.Get("other_flights").Array()),
	}
	if len(results.Best) == 0 && len(results.Other) == 0 {
		return nil, toolerr.EmptyResult(flightsEmptyMessage)
	}

	if ins := doc.Get("price_insights"); ins.Exists() {
		fi := &FlightInsights{
			LowestPrice: ins.Get("lowest_price").Float(),
			PriceLevel:  ins.Get("price_level").String(),
		}
		if rng := ins.Get("typical_price_range").Array(); len(rng) == 2 {
			fi.TypicalLow = rng[0].Float()
			fi.TypicalHigh = rng[1].Float()
			fi.HasTypical = true
		}
		results.Insights = fi
	}

	switch {
	case len(results.Best) > 0 && results.Best[0].HasPrice:
		results.BestPrice = results.Best[0].Price
		results.HasBestPrice = true
	case results.Insights != nil && results.Insights.LowestPrice > 0:
		results.BestPrice = results.Insights.LowestPrice
		results.HasBestPrice = true
	case len(results.Other) > 0 && results.Other[0].HasPrice:
		results.BestPrice = results.Other[0].Price
		results.HasBestPrice = true
	}

	return results, nil
}

func normalizeBucket(entries []gjson.Result) []Itinerary {
	var out []Itinerary
	for _, entry := range entries {
		it := Itinerary{
			Duration: fieldres.First(entry, "total_duration", "duration").Int(),
		}
		if price := entry.Get("price"); price.Exists() && price.Float() > 0 {
			it.Price = price.Float()
			it.HasPrice = true
		}

		seen := map[string]bool{}
		for _, leg := range entry.Get("flights").Array() {
			seg := Segment{
				Airline:       leg.Get("airline").String(),
				FlightNumber:  leg.Get("flight_number").String(),
				DepartureID:   fieldres.FirstString(leg, "departure_airport.id"),
				DepartureName: fieldres.FirstString(leg, "departure_airport.name"),
				DepartureTime: fieldres.FirstString(leg, "departure_airport.time"),
				ArrivalID:     fieldres.FirstString(leg, "arrival_airport.id"),
				ArrivalName:   fieldres.FirstString(leg, "arrival_airport.name"),
				ArrivalTime:   fieldres.FirstString(leg, "arrival_airport.time"),
				Duration:      leg.Get("duration").Int(),
			}
			it.Segments = append(it.Segments, seg)
			if seg.Airline != "" && !seen[seg.Airline] {
				seen[seg.Airline] = true
				it.Airlines = append(it.Airlines, seg.Airline)
			}
		}

		if layovers := entry.Get("layovers").Array(); len(layovers) > 0 {
			it.Stops = len(layovers)
		} else if n := len(it.Segments); n > 1 {
			it.Stops = n - 1
		}

		out = append(out, it)
	}
	return out
}

// ProjectFlights trims the normalized results per the caller's flags.
// Bucket truncation is a prefix of provider order; max of zero or less
// suppresses the bucket. Summary mode strips segment detail; detailed mode
// keeps everything the flags allow.
func ProjectFlights(r *FlightResults, flags FlightFlags) *ProjectedFlights {
	p := &ProjectedFlights{Results: r, Detailed: !flags.SummaryOnly}

	best := prefix(r.Best, flags.MaxResults)
	other := prefix(r.Other, flags.MaxResults)

	if flags.SummaryOnly {
		p.Best = stripSegments(best)
		p.Other = stripSegments(other)
		return p
	}

	p.Best = best
	p.Other = other
	if flags.IncludeInsights {
		p.Insights = r.Insights
	}
	return p
}

func stripSegments(items []Itinerary) []Itinerary {
	out := make([]Itinerary, len(items))
	for i, it := range items {
		it.Segments = nil
		out[i] = it
	}
	return out
}

// RenderFlights renders the projected results. The best price is the first
// figure in the document.
func RenderFlights(p *ProjectedFlights) string {
	r := p.Results

	doc := render.New("Flight Search: " + r.Route)
	doc.Fieldf("Outbound", "%s", r.OutboundDate)
	if r.ReturnDate != "" {
		doc.Fieldf("Return", "%s", r.ReturnDate)
	}
	if r.HasBestPrice {
		doc.Fieldf("Best price", "%s", formatDollars(r.BestPrice))
	}

	renderBucket(doc, "Best Flights", p.Best, p.Detailed)
	renderBucket(doc, "Other Flights", p.Other, p.Detailed)

	if p.Insights != nil {
		doc.Section("Price Insights")
		if p.Insights.LowestPrice > 0 {
			doc.Bulletf("Lowest price: %s", formatDollars(p.Insights.LowestPrice))
		}
		if p.Insights.PriceLevel != "" {
			doc.Bulletf("Price level: %s", p.Insights.PriceLevel)
		}
		if p.Insights.HasTypical {
			doc.Bulletf("Typical range: %s – %s",
				formatDollars(p.Insights.TypicalLow), formatDollars(p.Insights.TypicalHigh))
		}
	}

	return doc.String()
}

func renderBucket(doc *render.Doc, name string, items []Itinerary, detailed bool) {
	if len(items) == 0 {
		return
	}
	doc.Section(name)
	for i, it := range items {
		doc.Subsection(fmt.Sprintf("Option %d", i+1))
		if len(it.Airlines) > 0 {
			doc.Fieldf("Airlines", "%s", strings.Join(it.Airlines, ", "))
		}
		if it.HasPrice {
			doc.Fieldf("Price", "%s", formatDollars(it.Price))
		}
		if it.Duration > 0 {
			doc.Fieldf("Duration", "%s", formatMinutes(it.Duration))
		}
		doc.Fieldf("Stops", "%d", it.Stops)

		if detailed {
			for j, seg := range it.Segments {
				doc.Linef("%d. %s %s: %s (%s) %s → %s (%s) %s",
					j+1, seg.Airline, seg.FlightNumber,
					seg.DepartureName, seg.DepartureID, seg.DepartureTime,
					seg.ArrivalName, seg.ArrivalID, seg.ArrivalTime)
			}
		}
	}
}

func formatDollars(v float64) string {
	return "$" + formatNumber(v)
}

func formatMinutes(m int64) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}
