package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/providers/gmaps"
	"github.com/nimbuslab/gtools/internal/schema"
)

// geoClient is the provider surface the maps tools use; satisfied by
// *gmaps.Client and by test fakes.
type geoClient interface {
	Geocode(ctx context.Context, address string) (*gmaps.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*gmaps.GeocodeResult, error)
	TextSearch(ctx context.Context, p gmaps.TextSearchParams, maxResults int) ([]gmaps.Place, error)
	Directions(ctx context.Context, p gmaps.DirectionsParams) (*gmaps.Route, error)
	DistanceMatrix(ctx context.Context, p gmaps.MatrixParams) (*gmaps.Matrix, error)
	PlaceDetailsOp(ctx context.Context, placeID string) (*gmaps.PlaceDetails, error)
}

// mapsToolset shares config and a client factory across the six maps tools.
// The factory runs only after credential resolution succeeds, so a missing
// key never constructs a client, let alone performs a network call.
type mapsToolset struct {
	cfg       *config.Config
	newClient func(apiKey string) geoClient
}

// NewMapsTools returns the geospatial tools.
func NewMapsTools(cfg *config.Config) []Tool {
	return newMapsToolset(cfg, func(apiKey string) geoClient {
		return gmaps.NewClient(apiKey)
	})
}

func newMapsToolset(cfg *config.Config, factory func(string) geoClient) []Tool {
	ts := &mapsToolset{cfg: cfg, newClient: factory}
	return []Tool{
		&geocodeTool{ts},
		&reverseGeocodeTool{ts},
		&searchPlacesTool{ts},
		&directionsTool{ts},
		&distanceMatrixTool{ts},
		&placeDetailsTool{ts},
	}
}

func (ts *mapsToolset) client() (geoClient, error) {
	cred, err := credentials.Resolve(ts.cfg, credentials.KindMaps)
	if err != nil {
		return nil, err
	}
	return ts.newClient(cred.APIKey), nil
}

var travelModes = []string{"driving", "walking", "bicycling", "transit"}

// --- maps_geocode ---

type geocodeTool struct{ *mapsToolset }

var geocodeParams = schema.Object{Fields: map[string]schema.Field{
	"address": {Type: schema.TypeString, Required: true,
		Description: "Street address or place name to geocode"},
}}

func (t *geocodeTool) Definition() mcp.Tool {
	return definition("maps_geocode",
		"Convert an address into geographic coordinates", geocodeParams)
}

func (t *geocodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "maps_geocode", geocodeParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client()
		if err != nil {
			return "", err
		}
		result, err := client.Geocode(ctx, r.String("address"))
		if err != nil {
			return "", err
		}
		return gmaps.RenderGeocode(result), nil
	})
}

// --- maps_reverse_geocode ---

type reverseGeocodeTool struct{ *mapsToolset }

var reverseGeocodeParams = schema.Object{Fields: map[string]schema.Field{
	"latitude":  {Type: schema.TypeNumber, Required: true, Description: "Latitude"},
	"longitude": {Type: schema.TypeNumber, Required: true, Description: "Longitude"},
}}

func (t *reverseGeocodeTool) Definition() mcp.Tool {
	return definition("maps_reverse_geocode",
		"Convert coordinates into the nearest address", reverseGeocodeParams)
}

func (t *reverseGeocodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "maps_reverse_geocode", reverseGeocodeParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client()
		if err != nil {
			return "", err
		}
		result, err := client.ReverseGeocode(ctx, r.Float("latitude"), r.Float("longitude"))
		if err != nil {
			return "", err
		}
		return gmaps.RenderGeocode(result), nil
	})
}

// --- maps_search_places ---

type searchPlacesTool struct{ *mapsToolset }

var searchPlacesParams = schema.Object{Fields: map[string]schema.Field{
	"query": {Type: schema.TypeString, Required: true,
		Description: "Free-text search, e.g. \"coffee near union square\""},
	"latitude":  {Type: schema.TypeNumber, Description: "Bias results around this latitude"},
	"longitude": {Type: schema.TypeNumber, Description: "Bias results around this longitude"},
	"radius": {Type: schema.TypeInteger,
		Description: "Search radius in meters, used with latitude/longitude"},
	"max_results": {Type: schema.TypeInteger, Default: 5,
		Description: "Maximum number of places to return"},
}}

func (t *searchPlacesTool) Definition() mcp.Tool {
	return definition("maps_search_places",
		"Search for places by text query", searchPlacesParams)
}

func (t *searchPlacesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "maps_search_places", searchPlacesParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client()
		if err != nil {
			return "", err
		}
		p := gmaps.TextSearchParams{
			Query:  r.String("query"),
			Radius: r.Int("radius"),
		}
		if r.Has("latitude") && r.Has("longitude") {
			p.Lat = r.Float("latitude")
			p.Lng = r.Float("longitude")
			p.HasLoc = true
		}
		places, err := client.TextSearch(ctx, p, r.Int("max_results"))
		if err != nil {
			return "", err
		}
		return gmaps.RenderPlaces(p.Query, places), nil
	})
}

// --- maps_directions ---

type directionsTool struct{ *mapsToolset }

var directionsParams = schema.Object{Fields: map[string]schema.Field{
	"origin":      {Type: schema.TypeString, Required: true, Description: "Starting address or place"},
	"destination": {Type: schema.TypeString, Required: true, Description: "Destination address or place"},
	"mode": {Type: schema.TypeString, Enum: travelModes,
		Description: "Travel mode; the provider defaults to driving when omitted"},
}}

func (t *directionsTool) Definition() mcp.Tool {
	return definition("maps_directions",
		"Get turn-by-turn directions between two locations", directionsParams)
}

func (t *directionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "maps_directions", directionsParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client()
		if err != nil {
			return "", err
		}
		route, err := client.Directions(ctx, gmaps.DirectionsParams{
			Origin:      r.String("origin"),
			Destination: r.String("destination"),
			Mode:        r.String("mode"),
		})
		if err != nil {
			return "", err
		}
		return gmaps.RenderRoute(route), nil
	})
}

// --- maps_distance_matrix ---

type distanceMatrixTool struct{ *mapsToolset }

var distanceMatrixParams = schema.Object{Fields: map[string]schema.Field{
	"origins":      {Type: schema.TypeStringArray, Required: true, Description: "Origin addresses"},
	"destinations": {Type: schema.TypeStringArray, Required: true, Description: "Destination addresses"},
	"mode": {Type: schema.TypeString, Enum: travelModes,
		Description: "Travel mode; the provider defaults to driving when omitted"},
}}

func (t *distanceMatrixTool) Definition() mcp.Tool {
	return definition("maps_distance_matrix",
		"Get travel distances and durations between multiple origins and destinations", distanceMatrixParams)
}

func (t *distanceMatrixTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "maps_distance_matrix", distanceMatrixParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client()
		if err != nil {
			return "", err
		}
		matrix, err := client.DistanceMatrix(ctx, gmaps.MatrixParams{
			Origins:      r.Strings("origins"),
			Destinations: r.Strings("destinations"),
			Mode:         r.String("mode"),
		})
		if err != nil {
			return "", err
		}
		return gmaps.RenderMatrix(matrix), nil
	})
}

// --- maps_place_details ---

type placeDetailsTool struct{ *mapsToolset }

var placeDetailsParams = schema.Object{Fields: map[string]schema.Field{
	"place_id": {Type: schema.TypeString, Required: true,
		Description: "Place id from a previous search result"},
}}

func (t *placeDetailsTool) Definition() mcp.Tool {
	return definition("maps_place_details",
		"Get detailed information about a place", placeDetailsParams)
}

func (t *placeDetailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "maps_place_details", placeDetailsParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		client, err := t.client()
		if err != nil {
			return "", err
		}
		details, err := client.PlaceDetailsOp(ctx, r.String("place_id"))
		if err != nil {
			return "", err
		}
		return gmaps.RenderPlaceDetails(details), nil
	})
}
