package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/providers/gcal"
	"github.com/nimbuslab/gtools/internal/providers/gmail"
	"github.com/nimbuslab/gtools/internal/providers/gmaps"
	"github.com/nimbuslab/gtools/internal/providers/serpapi"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

func callTool(t *testing.T, tool Tool, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = tool.Definition().Name
	req.Params.Arguments = args

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func findTool(t *testing.T, ts []Tool, name string) Tool {
	t.Helper()
	for _, tool := range ts {
		if tool.Definition().Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not registered", name)
	return nil
}

// --- maps ---

type fakeGeo struct {
	geocodeResult *gmaps.GeocodeResult
	geocodeErr    error
	places        []gmaps.Place
}

func (f *fakeGeo) Geocode(ctx context.Context, address string) (*gmaps.GeocodeResult, error) {
	return f.geocodeResult, f.geocodeErr
}

func (f *fakeGeo) ReverseGeocode(ctx context.Context, lat, lng float64) (*gmaps.GeocodeResult, error) {
	return f.geocodeResult, f.geocodeErr
}

func (f *fakeGeo) TextSearch(ctx context.Context, p gmaps.TextSearchParams, maxResults int) ([]gmaps.Place, error) {
	return f.places, nil
}

func (f *fakeGeo) Directions(ctx context.Context, p gmaps.DirectionsParams) (*gmaps.Route, error) {
	return nil, errors.New("not used")
}

func (f *fakeGeo) DistanceMatrix(ctx context.Context, p gmaps.MatrixParams) (*gmaps.Matrix, error) {
	return nil, errors.New("not used")
}

func (f *fakeGeo) PlaceDetailsOp(ctx context.Context, placeID string) (*gmaps.PlaceDetails, error) {
	return nil, errors.New("not used")
}

func mapsFixture(cfg *config.Config, fake *fakeGeo) ([]Tool, *int) {
	constructions := 0
	ts := newMapsToolset(cfg, func(apiKey string) geoClient {
		constructions++
		return fake
	})
	return ts, &constructions
}

func TestMapsGeocode(t *testing.T) {
	ts, constructions := mapsFixture(&config.Config{MapsAPIKey: "k"}, &fakeGeo{
		geocodeResult: &gmaps.GeocodeResult{Address: "1 Main St", Lat: 1.5, Lng: 2.5, PlaceID: "p1"},
	})

	out, isErr := callTool(t, findTool(t, ts, "maps_geocode"), map[string]any{"address": "1 Main St"})
	assert.False(t, isErr)
	assert.Contains(t, out, "**Address:** 1 Main St")
	assert.Equal(t, 1, *constructions)
}

func TestMissingCredentialConstructsNoClient(t *testing.T) {
	ts, constructions := mapsFixture(&config.Config{}, &fakeGeo{})

	out, isErr := callTool(t, findTool(t, ts, "maps_geocode"), map[string]any{"address": "x"})
	assert.True(t, isErr)
	assert.Equal(t, "Error: GOOGLE_MAPS_API_KEY is not set", out)
	assert.Zero(t, *constructions)
}

func TestValidationFailureConstructsNoClient(t *testing.T) {
	ts, constructions := mapsFixture(&config.Config{MapsAPIKey: "k"}, &fakeGeo{})

	out, isErr := callTool(t, findTool(t, ts, "maps_geocode"), map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, out, "Error: missing required parameter")
	assert.Zero(t, *constructions)

	out, isErr = callTool(t, findTool(t, ts, "maps_geocode"), map[string]any{"address": "x", "bogus": true})
	assert.True(t, isErr)
	assert.Contains(t, out, `"bogus"`)
	assert.Zero(t, *constructions)
}

func TestEmptyResultIsSuccessfulText(t *testing.T) {
	ts, _ := mapsFixture(&config.Config{MapsAPIKey: "k"}, &fakeGeo{
		geocodeErr: toolerr.EmptyResult("No results found for the given address."),
	})

	out, isErr := callTool(t, findTool(t, ts, "maps_geocode"), map[string]any{"address": "nowhere"})
	assert.False(t, isErr)
	assert.Equal(t, "No results found for the given address.", out)
}

func TestProviderFailureIsErrorText(t *testing.T) {
	ts, _ := mapsFixture(&config.Config{MapsAPIKey: "k"}, &fakeGeo{
		geocodeErr: toolerr.WrapProvider(errors.New("tcp timeout"), "maps request failed"),
	})

	out, isErr := callTool(t, findTool(t, ts, "maps_geocode"), map[string]any{"address": "x"})
	assert.True(t, isErr)
	assert.Equal(t, "Error: maps request failed", out)
	assert.NotContains(t, out, "tcp timeout")
}

// --- finance ---

type fakeQuote struct {
	quote     *serpapi.Quote
	lastQuery serpapi.QuoteParams

	news        []serpapi.NewsItem
	newsErr     error
	newsQueries []string
}

func (f *fakeQuote) QuoteSearch(ctx context.Context, p serpapi.QuoteParams) (*serpapi.Quote, error) {
	f.lastQuery = p
	return f.quote, nil
}

func (f *fakeQuote) NewsSearch(ctx context.Context, query string) ([]serpapi.NewsItem, error) {
	f.newsQueries = append(f.newsQueries, query)
	return f.news, f.newsErr
}

func financeFixture(cfg *config.Config, fake *fakeQuote) Tool {
	return &financeTool{cfg: cfg, newClient: func(apiKey string) quoteClient { return fake }}
}

func TestFinanceQuoteDefaultsToSummary(t *testing.T) {
	fake := &fakeQuote{quote: &serpapi.Quote{
		Symbol: "GOOGL", Name: "Alphabet", PriceText: "$187.32",
		News: []serpapi.NewsItem{{Title: "ignored in summary", Source: "X"}},
	}}
	tool := financeFixture(&config.Config{SerpAPIKey: "k"}, fake)

	out, isErr := callTool(t, tool, map[string]any{"query": "GOOGL", "window": "1M"})
	assert.False(t, isErr)
	assert.Contains(t, out, "**Price:** $187.32")
	assert.NotContains(t, out, "## News")
	assert.Equal(t, "1M", fake.lastQuery.Window)
	assert.Empty(t, fake.newsQueries)
}

func TestFinanceQuoteNewsBackfill(t *testing.T) {
	fake := &fakeQuote{
		quote: &serpapi.Quote{Symbol: "GOOGL", Name: "Alphabet", PriceText: "$187.32"},
		news:  []serpapi.NewsItem{{Title: "Backfilled headline", Source: "Reuters"}},
	}
	tool := financeFixture(&config.Config{SerpAPIKey: "k", NewsAPIKey: "n"}, fake)

	out, isErr := callTool(t, tool, map[string]any{
		"query":        "GOOGL",
		"summary_only": false,
		"include_news": true,
	})
	assert.False(t, isErr)
	assert.Contains(t, out, "Backfilled headline")
	assert.Equal(t, []string{"GOOGL"}, fake.newsQueries)
}

func TestFinanceQuoteNewsBackfillSkippedWithoutKey(t *testing.T) {
	fake := &fakeQuote{quote: &serpapi.Quote{Symbol: "GOOGL", Name: "Alphabet", PriceText: "$1.00"}}
	tool := financeFixture(&config.Config{SerpAPIKey: "k"}, fake)

	_, isErr := callTool(t, tool, map[string]any{
		"query":        "GOOGL",
		"summary_only": false,
		"include_news": true,
	})
	assert.False(t, isErr)
	assert.Empty(t, fake.newsQueries)
}

func TestFinanceQuoteNewsBackfillFailureDegrades(t *testing.T) {
	fake := &fakeQuote{
		quote:   &serpapi.Quote{Symbol: "GOOGL", Name: "Alphabet", PriceText: "$1.00"},
		newsErr: errors.New("news engine down"),
	}
	tool := financeFixture(&config.Config{SerpAPIKey: "k", NewsAPIKey: "n"}, fake)

	out, isErr := callTool(t, tool, map[string]any{
		"query":        "GOOGL",
		"summary_only": false,
		"include_news": true,
	})
	assert.False(t, isErr)
	assert.NotContains(t, out, "## News")
}

func TestFinanceQuoteRejectsBadWindow(t *testing.T) {
	tool := financeFixture(&config.Config{SerpAPIKey: "k"}, &fakeQuote{})

	out, isErr := callTool(t, tool, map[string]any{"query": "GOOGL", "window": "2W"})
	assert.True(t, isErr)
	assert.Contains(t, out, "2W")
}

// --- flights ---

type fakeFlights struct {
	results  *serpapi.FlightResults
	searches int
}

func (f *fakeFlights) FlightSearch(ctx context.Context, p serpapi.FlightParams) (*serpapi.FlightResults, error) {
	f.searches++
	return f.results, nil
}

func flightsFixture(cfg *config.Config, fake *fakeFlights) Tool {
	return &flightsTool{cfg: cfg, newClient: func(apiKey string) flightClient { return fake }}
}

func TestFlightsSearch(t *testing.T) {
	fake := &fakeFlights{results: &serpapi.FlightResults{
		Route: "JFK to BOS", OutboundDate: "2026-09-10", ReturnDate: "2026-09-14",
		BestPrice: 89, HasBestPrice: true,
		Best: []serpapi.Itinerary{{Price: 89, HasPrice: true, Airlines: []string{"JetBlue"}}},
	}}
	tool := flightsFixture(&config.Config{SerpAPIKey: "k"}, fake)

	out, isErr := callTool(t, tool, map[string]any{
		"departure_id":  "JFK",
		"arrival_id":    "BOS",
		"outbound_date": "2026-09-10",
		"return_date":   "2026-09-14",
	})
	assert.False(t, isErr)
	assert.Contains(t, out, "**Best price:** $89")
	assert.Equal(t, 1, fake.searches)
}

func TestFlightsTripShapeCheckedBeforeCredential(t *testing.T) {
	fake := &fakeFlights{}
	// SerpAPI key is absent; the shape error must win.
	tool := flightsFixture(&config.Config{}, fake)

	out, isErr := callTool(t, tool, map[string]any{
		"departure_id":  "JFK",
		"arrival_id":    "BOS",
		"outbound_date": "2026-09-10",
	})
	assert.True(t, isErr)
	assert.Equal(t, "Error: return_date is required for round-trip searches", out)
	assert.Zero(t, fake.searches)
}

func TestFlightsMultiCityRequiresItinerary(t *testing.T) {
	tool := flightsFixture(&config.Config{SerpAPIKey: "k"}, &fakeFlights{})

	out, isErr := callTool(t, tool, map[string]any{"trip_type": "multi-city"})
	assert.True(t, isErr)
	assert.Contains(t, out, "multi_city_json")
}

func TestFlightsOneWayNeedsRoute(t *testing.T) {
	tool := flightsFixture(&config.Config{SerpAPIKey: "k"}, &fakeFlights{})

	out, isErr := callTool(t, tool, map[string]any{"trip_type": "one-way"})
	assert.True(t, isErr)
	assert.Contains(t, out, "departure_id")
}

// --- mail ---

type fakeMail struct {
	sent   *gmail.SentInfo
	listed []gmail.MessageSummary
}

func (f *fakeMail) Send(ctx context.Context, p gmail.SendParams) (*gmail.SentInfo, error) {
	return f.sent, nil
}

func (f *fakeMail) List(ctx context.Context, p gmail.ListParams) ([]gmail.MessageSummary, error) {
	return f.listed, nil
}

func (f *fakeMail) Get(ctx context.Context, id string) (*gmail.Message, error) {
	return &gmail.Message{ID: id, From: "alice@example.com", Subject: "Hi"}, nil
}

func (f *fakeMail) ListLabels(ctx context.Context) ([]gmail.Label, error) {
	return []gmail.Label{{ID: "INBOX", Name: "INBOX", Type: "system"}}, nil
}

func oauthConfig() *config.Config {
	return &config.Config{
		GoogleClientID:     "id",
		GoogleClientSecret: "secret",
		GoogleAccessToken:  "access",
		GoogleRefreshToken: "refresh",
	}
}

func mailFixture(cfg *config.Config, fake *fakeMail) ([]Tool, *int) {
	constructions := 0
	ts := newMailToolset(cfg, func(ctx context.Context, bundle *credentials.OAuthBundle) (mailClient, error) {
		constructions++
		return fake, nil
	})
	return ts, &constructions
}

func TestMailSend(t *testing.T) {
	ts, constructions := mailFixture(oauthConfig(), &fakeMail{
		sent: &gmail.SentInfo{ID: "m1", ThreadID: "t1", To: "a@example.com", Subject: "Hi"},
	})

	out, isErr := callTool(t, findTool(t, ts, "mail_send"), map[string]any{
		"to": "a@example.com", "subject": "Hi", "body": "hello",
	})
	assert.False(t, isErr)
	assert.Contains(t, out, "# Message Sent")
	assert.Contains(t, out, "**Message ID:** m1")
	assert.Equal(t, 1, *constructions)
}

func TestMailMissingOAuthNamesVariables(t *testing.T) {
	ts, constructions := mailFixture(&config.Config{}, &fakeMail{})

	out, isErr := callTool(t, findTool(t, ts, "mail_list"), map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, out, "GOOGLE_CLIENT_ID")
	assert.Contains(t, out, "GOOGLE_REFRESH_TOKEN")
	assert.Zero(t, *constructions)
}

// --- calendar ---

type fakeCal struct {
	created  *gcal.Event
	events   []gcal.Event
	lastCal  string
	lastList gcal.ListParams
}

func (f *fakeCal) CreateEvent(ctx context.Context, calendarID string, p gcal.EventParams) (*gcal.Event, error) {
	f.lastCal = calendarID
	return f.created, nil
}

func (f *fakeCal) ListEvents(ctx context.Context, calendarID string, p gcal.ListParams) ([]gcal.Event, error) {
	f.lastCal = calendarID
	f.lastList = p
	return f.events, nil
}

func (f *fakeCal) GetEvent(ctx context.Context, calendarID, eventID string) (*gcal.Event, error) {
	return &gcal.Event{ID: eventID, Summary: "Fetched"}, nil
}

func (f *fakeCal) UpdateEvent(ctx context.Context, calendarID, eventID string, p gcal.EventParams) (*gcal.Event, error) {
	return &gcal.Event{ID: eventID, Summary: p.Summary}, nil
}

func (f *fakeCal) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	f.lastCal = calendarID
	return nil
}

func (f *fakeCal) ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error) {
	return []gcal.CalendarInfo{{ID: "primary", Summary: "Personal", Primary: true}}, nil
}

func calFixture(cfg *config.Config, fake *fakeCal) []Tool {
	return newCalToolset(cfg, nil, func(ctx context.Context, bundle *credentials.OAuthBundle) (calClient, error) {
		return fake, nil
	})
}

func TestCalendarCreateUsesDefaultCalendar(t *testing.T) {
	cfg := oauthConfig()
	cfg.DefaultCalendarID = "primary"
	fake := &fakeCal{created: &gcal.Event{ID: "ev-1", Summary: "Standup", Start: "2026-09-01T10:00:00Z"}}
	ts := calFixture(cfg, fake)

	out, isErr := callTool(t, findTool(t, ts, "calendar_create_event"), map[string]any{
		"summary": "Standup",
		"start":   "2026-09-01T10:00:00Z",
		"end":     "2026-09-01T10:30:00Z",
	})
	assert.False(t, isErr)
	assert.Contains(t, out, "# Event Created")
	assert.Equal(t, "primary", fake.lastCal)
}

func TestCalendarListDefaultsTimeMinToNow(t *testing.T) {
	cfg := oauthConfig()
	cfg.DefaultCalendarID = "primary"
	fake := &fakeCal{events: []gcal.Event{{ID: "e1", Summary: "One", Start: "2026-09-01T09:00:00Z"}}}
	ts := calFixture(cfg, fake)

	before := time.Now().Add(-time.Minute)
	_, isErr := callTool(t, findTool(t, ts, "calendar_list_events"), map[string]any{})
	assert.False(t, isErr)

	parsed, err := time.Parse(time.RFC3339, fake.lastList.TimeMin)
	require.NoError(t, err)
	assert.True(t, parsed.After(before))
	assert.Equal(t, int64(10), fake.lastList.MaxResults)
}

func TestCalendarListHonorsExplicitWindow(t *testing.T) {
	cfg := oauthConfig()
	fake := &fakeCal{events: []gcal.Event{{ID: "e1", Summary: "One"}}}
	ts := calFixture(cfg, fake)

	_, isErr := callTool(t, findTool(t, ts, "calendar_list_events"), map[string]any{
		"calendar_id": "work@group.calendar.google.com",
		"time_min":    "2026-09-01T00:00:00Z",
		"time_max":    "2026-09-30T00:00:00Z",
	})
	assert.False(t, isErr)
	assert.Equal(t, "work@group.calendar.google.com", fake.lastCal)
	assert.Equal(t, "2026-09-01T00:00:00Z", fake.lastList.TimeMin)
	assert.Equal(t, "2026-09-30T00:00:00Z", fake.lastList.TimeMax)
}

func TestCalendarDescriptionsNameKnownCalendars(t *testing.T) {
	catalog := gcal.NewCatalog([]gcal.CalendarInfo{
		{ID: "primary", Summary: "Personal", Primary: true},
		{ID: "work@group.calendar.google.com", Summary: "Work"},
	})
	ts := newCalToolset(oauthConfig(), catalog, func(ctx context.Context, bundle *credentials.OAuthBundle) (calClient, error) {
		return &fakeCal{}, nil
	})

	def := findTool(t, ts, "calendar_get_event").Definition()
	desc := def.InputSchema.Properties["calendar_id"].(map[string]any)["description"].(string)
	assert.Contains(t, desc, "work@group.calendar.google.com")
}

func TestCalendarNilCatalogFallsBackToGenericDescription(t *testing.T) {
	ts := calFixture(oauthConfig(), &fakeCal{})

	def := findTool(t, ts, "calendar_get_event").Definition()
	desc := def.InputSchema.Properties["calendar_id"].(map[string]any)["description"].(string)
	assert.NotContains(t, desc, "Known values")
}

// --- registry ---

func TestRegistryNamesAreSorted(t *testing.T) {
	cfg := oauthConfig()
	cfg.MapsAPIKey = "k"
	cfg.SerpAPIKey = "k"

	r := NewRegistry()
	r.Register(NewMapsTools(cfg)...)
	r.Register(NewFinanceTool(cfg))
	r.Register(NewFlightsTool(cfg))
	r.Register(NewMailTools(cfg)...)
	r.Register(NewCalendarTools(cfg, nil)...)

	names := r.Names()
	assert.Len(t, names, 18)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}

	_, ok := r.Get("finance_quote")
	assert.True(t, ok)
	_, ok = r.Get("nope")
	assert.False(t, ok)
}
