package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/providers/serpapi"
	"github.com/nimbuslab/gtools/internal/schema"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

// flightClient is the provider surface the flight tool uses.
type flightClient interface {
	FlightSearch(ctx context.Context, p serpapi.FlightParams) (*serpapi.FlightResults, error)
}

type flightsTool struct {
	cfg       *config.Config
	newClient func(apiKey string) flightClient
}

// NewFlightsTool returns the flight search tool.
func NewFlightsTool(cfg *config.Config) Tool {
	return &flightsTool{
		cfg: cfg,
		newClient: func(apiKey string) flightClient {
			return serpapi.NewClient(apiKey)
		},
	}
}

var tripTypes = []string{serpapi.TripRoundTrip, serpapi.TripOneWay, serpapi.TripMultiCity}

var flightsParams = schema.Object{Fields: map[string]schema.Field{
	"departure_id": {Type: schema.TypeString,
		Description: "Departure airport code, e.g. JFK (required except for multi-city)"},
	"arrival_id": {Type: schema.TypeString,
		Description: "Arrival airport code, e.g. LHR (required except for multi-city)"},
	"outbound_date": {Type: schema.TypeString,
		Description: "Outbound date, YYYY-MM-DD (required except for multi-city)"},
	"return_date": {Type: schema.TypeString,
		Description: "Return date, YYYY-MM-DD; required for round-trip"},
	"trip_type": {Type: schema.TypeString, Enum: tripTypes, Default: serpapi.TripRoundTrip,
		Description: "Trip shape"},
	"multi_city_json": {Type: schema.TypeString,
		Description: "Structured legs for multi-city trips, as the provider's JSON array"},
	"summary_only": {Type: schema.TypeBoolean, Default: true,
		Description: "Return headline price and compact options without per-segment detail"},
	"max_results": {Type: schema.TypeInteger, Default: 3,
		Description: "Maximum itineraries per bucket; zero or less suppresses the bucket"},
	"include_price_insights": {Type: schema.TypeBoolean, Default: false,
		Description: "Include the pricing context section (detailed mode only)"},
}}

func (t *flightsTool) Definition() mcp.Tool {
	return definition("flights_search",
		"Search flights between airports for one-way, round-trip, or multi-city trips",
		flightsParams)
}

func (t *flightsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "flights_search", flightsParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		p := serpapi.FlightParams{
			DepartureID:   r.String("departure_id"),
			ArrivalID:     r.String("arrival_id"),
			OutboundDate:  r.String("outbound_date"),
			ReturnDate:    r.String("return_date"),
			TripType:      r.String("trip_type"),
			MultiCityJSON: r.String("multi_city_json"),
		}
		if err := validateTripShape(p); err != nil {
			return "", err
		}

		cred, err := credentials.Resolve(t.cfg, credentials.KindSerpAPI)
		if err != nil {
			return "", err
		}

		results, err := t.newClient(cred.APIKey).FlightSearch(ctx, p)
		if err != nil {
			return "", err
		}

		flags := serpapi.FlightFlags{
			SummaryOnly:     r.Bool("summary_only"),
			MaxResults:      r.Int("max_results"),
			IncludeInsights: r.Bool("include_price_insights"),
		}
		return serpapi.RenderFlights(serpapi.ProjectFlights(results, flags)), nil
	})
}

// validateTripShape enforces the cross-field dependencies the per-field
// schema cannot express: round-trip needs a return date, multi-city needs
// the structured itinerary, the other shapes need the route fields.
func validateTripShape(p serpapi.FlightParams) error {
	if p.TripType == serpapi.TripMultiCity {
		if p.MultiCityJSON == "" {
			return toolerr.Validatef("multi_city_json is required for multi-city trips")
		}
		return nil
	}
	if p.DepartureID == "" || p.ArrivalID == "" || p.OutboundDate == "" {
		return toolerr.Validatef("departure_id, arrival_id, and outbound_date are required for %s trips", p.TripType)
	}
	if p.TripType == serpapi.TripRoundTrip && p.ReturnDate == "" {
		return toolerr.Validatef("return_date is required for round-trip searches")
	}
	return nil
}
