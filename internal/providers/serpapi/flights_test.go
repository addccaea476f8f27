package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/gtools/internal/toolerr"
)

const flightsBody = `{
	"best_flights": [
		{
			"price": 89,
			"total_duration": 95,
			"flights": [
				{
					"airline": "JetBlue",
					"flight_number": "B6 817",
					"duration": 95,
					"departure_airport": {"id": "JFK", "name": "John F. Kennedy International Airport", "time": "2026-09-10 07:30"},
					"arrival_airport": {"id": "BOS", "name": "Boston Logan International Airport", "time": "2026-09-10 09:05"}
				}
			]
		},
		{
			"price": 124,
			"total_duration": 210,
			"layovers": [{"id": "PHL"}],
			"flights": [
				{"airline": "American", "flight_number": "AA 100", "departure_airport": {"id": "JFK"}, "arrival_airport": {"id": "PHL"}},
				{"airline": "American", "flight_number": "AA 204", "departure_airport": {"id": "PHL"}, "arrival_airport": {"id": "BOS"}}
			]
		}
	],
	"other_flights": [
		{"price": 156, "total_duration": 100, "flights": [{"airline": "Delta", "flight_number": "DL 5", "departure_airport": {"id": "JFK"}, "arrival_airport": {"id": "BOS"}}]}
	],
	"price_insights": {
		"lowest_price": 89,
		"price_level": "low",
		"typical_price_range": [110, 210]
	}
}`

func TestNormalizeFlights(t *testing.T) {
	r, err := NormalizeFlights([]byte(flightsBody))
	require.NoError(t, err)

	require.Len(t, r.Best, 2)
	require.Len(t, r.Other, 1)

	first := r.Best[0]
	assert.True(t, first.HasPrice)
	assert.Equal(t, 89.0, first.Price)
	assert.Equal(t, int64(95), first.Duration)
	assert.Equal(t, 0, first.Stops)
	assert.Equal(t, []string{"JetBlue"}, first.Airlines)
	require.Len(t, first.Segments, 1)
	assert.Equal(t, "B6 817", first.Segments[0].FlightNumber)

	// Two segments through PHL, one layover.
	assert.Equal(t, 1, r.Best[1].Stops)
	assert.Equal(t, []string{"American"}, r.Best[1].Airlines)

	require.NotNil(t, r.Insights)
	assert.Equal(t, "low", r.Insights.PriceLevel)
	assert.True(t, r.Insights.HasTypical)
	assert.Equal(t, 110.0, r.Insights.TypicalLow)
}

func TestNormalizeFlightsBestPriceOrder(t *testing.T) {
	r, err := NormalizeFlights([]byte(flightsBody))
	require.NoError(t, err)
	require.True(t, r.HasBestPrice)
	assert.Equal(t, 89.0, r.BestPrice)

	// Without a priced best bucket, price_insights wins over other_flights.
	body := []byte(`{
		"best_flights": [{"total_duration": 90, "flights": [{"airline": "X"}]}],
		"other_flights": [{"price": 300, "flights": [{"airline": "Y"}]}],
		"price_insights": {"lowest_price": 142}
	}`)
	r, err = NormalizeFlights(body)
	require.NoError(t, err)
	require.True(t, r.HasBestPrice)
	assert.Equal(t, 142.0, r.BestPrice)

	// Last resort is the first other-flights entry.
	body = []byte(`{"other_flights": [{"price": 300, "flights": [{"airline": "Y"}]}]}`)
	r, err = NormalizeFlights(body)
	require.NoError(t, err)
	require.True(t, r.HasBestPrice)
	assert.Equal(t, 300.0, r.BestPrice)
}

func TestNormalizeFlightsEmpty(t *testing.T) {
	_, err := NormalizeFlights([]byte(`{"best_flights": [], "other_flights": []}`))
	require.Error(t, err)
	assert.Equal(t, toolerr.KindEmptyResult, toolerr.KindOf(err))
	assert.Equal(t, "No flights found for the given route and dates.", toolerr.UserMessage(err))
}

func TestProjectFlightsSummaryStripsSegments(t *testing.T) {
	r, err := NormalizeFlights([]byte(flightsBody))
	require.NoError(t, err)

	p := ProjectFlights(r, FlightFlags{SummaryOnly: true, MaxResults: 3})
	require.Len(t, p.Best, 2)
	for _, it := range p.Best {
		assert.Nil(t, it.Segments)
	}
	// Compact fields survive the strip.
	assert.True(t, p.Best[0].HasPrice)
	assert.Equal(t, []string{"JetBlue"}, p.Best[0].Airlines)
	assert.Nil(t, p.Insights)

	// The normalized results are untouched.
	assert.NotNil(t, r.Best[0].Segments)
}

func TestProjectFlightsMaxResultsIsPerBucket(t *testing.T) {
	r, err := NormalizeFlights([]byte(flightsBody))
	require.NoError(t, err)

	p := ProjectFlights(r, FlightFlags{MaxResults: 1, IncludeInsights: true})
	assert.Len(t, p.Best, 1)
	assert.Len(t, p.Other, 1)
	assert.NotNil(t, p.Insights)

	p = ProjectFlights(r, FlightFlags{MaxResults: 0})
	assert.Nil(t, p.Best)
	assert.Nil(t, p.Other)
}

func TestRenderFlightsBestPriceIsFirstFigure(t *testing.T) {
	r, err := NormalizeFlights([]byte(flightsBody))
	require.NoError(t, err)
	r.Route = "JFK to BOS"
	r.OutboundDate = "2026-09-10"
	r.ReturnDate = "2026-09-14"

	out := RenderFlights(ProjectFlights(r, FlightFlags{SummaryOnly: true, MaxResults: 3}))

	best := strings.Index(out, "**Best price:** $89")
	require.GreaterOrEqual(t, best, 0)
	firstDollar := strings.Index(out, "$")
	assert.Equal(t, strings.Index(out, "$89"), firstDollar)

	assert.Contains(t, out, "**Outbound:** 2026-09-10")
	assert.Contains(t, out, "**Return:** 2026-09-14")
	// Summary mode renders no per-segment lines.
	assert.NotContains(t, out, "B6 817")
}

func TestRenderFlightsDetailedShowsSegments(t *testing.T) {
	r, err := NormalizeFlights([]byte(flightsBody))
	require.NoError(t, err)
	r.Route = "JFK to BOS"
	r.OutboundDate = "2026-09-10"

	out := RenderFlights(ProjectFlights(r, FlightFlags{MaxResults: 3, IncludeInsights: true}))
	assert.Contains(t, out, "JetBlue B6 817")
	assert.Contains(t, out, "## Price Insights")
	assert.Contains(t, out, "Typical range: $110 – $210")
}

func TestBuildFlightsQuery(t *testing.T) {
	q := buildFlightsQuery(FlightParams{
		TripType:     TripRoundTrip,
		DepartureID:  "JFK",
		ArrivalID:    "BOS",
		OutboundDate: "2026-09-10",
		ReturnDate:   "2026-09-14",
	})
	assert.Equal(t, "1", q.Get("type"))
	assert.Equal(t, "2026-09-14", q.Get("return_date"))

	q = buildFlightsQuery(FlightParams{
		TripType:     TripOneWay,
		DepartureID:  "JFK",
		ArrivalID:    "BOS",
		OutboundDate: "2026-09-10",
	})
	assert.Equal(t, "2", q.Get("type"))
	assert.Empty(t, q.Get("return_date"))

	q = buildFlightsQuery(FlightParams{
		TripType:      TripMultiCity,
		MultiCityJSON: `[{"departure_id":"JFK","arrival_id":"LHR","date":"2026-09-10"}]`,
	})
	assert.Equal(t, "3", q.Get("type"))
	assert.NotEmpty(t, q.Get("multi_city_json"))
	assert.Empty(t, q.Get("departure_id"))
}

func TestFlightSearchDescribesRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_flights", r.URL.Query().Get("engine"))
		w.Write([]byte(flightsBody))
	}))
	defer srv.Close()

	client := NewClientWithBase("test-key", srv.URL, srv.Client())
	r, err := client.FlightSearch(context.Background(), FlightParams{
		TripType:     TripRoundTrip,
		DepartureID:  "JFK",
		ArrivalID:    "BOS",
		OutboundDate: "2026-09-10",
		ReturnDate:   "2026-09-14",
	})
	require.NoError(t, err)
	assert.Equal(t, "JFK to BOS", r.Route)
	assert.Equal(t, "2026-09-10", r.OutboundDate)
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "45m", formatMinutes(45))
	assert.Equal(t, "2h", formatMinutes(120))
	assert.Equal(t, "1h 35m", formatMinutes(95))
}
