package gmaps

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

const (
	directionsEmptyMessage = "No route found between the given locations."
	matrixEmptyMessage     = "No distance information found for the given locations."
)

// DirectionsParams is the provider call shape for a directions request.
type DirectionsParams struct {
	Origin      string
	Destination string
	Mode        string // driving, walking, bicycling, transit; omitted when empty
}

// MatrixParams is the provider call shape for a distance matrix request.
type MatrixParams struct {
	Origins      []string
	Destinations []string
	Mode         string
}

// Step is one normalized direction step with markup already stripped.
type Step struct {
	Instruction string
	Distance    string
	Duration    string
}

// Route is the normalized primary route of a directions response.
type Route struct {
	Summary      string
	StartAddress string
	EndAddress   string
	Distance     string
	Duration     string
	Steps        []Step
}

// MatrixCell is one origin/destination pairing in a distance matrix.
type MatrixCell struct {
	Distance string
	Duration string
	OK       bool
}

// Matrix is the normalized distance matrix, row per origin.
type Matrix struct {
	Origins      []string
	Destinations []string
	Rows         [][]MatrixCell
}

func buildDirectionsQuery(p DirectionsParams) url.Values {
	params := url.Values{}
	params.Set("origin", p.Origin)
	params.Set("destination", p.Destination)
	if p.Mode != "" {
		params.Set("mode", p.Mode)
	}
	return params
}

func buildMatrixQuery(p MatrixParams) url.Values {
	params := url.Values{}
	params.Set("origins", strings.Join(p.Origins, "|"))
	params.Set("destinations", strings.Join(p.Destinations, "|"))
	if p.Mode != "" {
		params.Set("mode", p.Mode)
	}
	return params
}

// Directions fetches and normalizes the primary route between two locations.
func (c *Client) Directions(ctx context.Context, p DirectionsParams) (*Route, error) {
	body, err := c.get(ctx, "/directions/json", buildDirectionsQuery(p))
	if err != nil {
		return nil, err
	}
	return normalizeDirections(body)
}

// DistanceMatrix fetches pairwise distances between origins and destinations.
func (c *Client) DistanceMatrix(ctx context.Context, p MatrixParams) (*Matrix, error) {
	body, err := c.get(ctx, "/distancematrix/json", buildMatrixQuery(p))
	if err != nil {
		return nil, err
	}
	return normalizeMatrix(body)
}

// normalizeDirections takes routes[0] as the primary record and its first
// leg as the route body. Step instructions arrive HTML-formatted and are
// stripped here so no markup reaches the renderer.
func normalizeDirections(body []byte) (*Route, error) {
	if err := checkStatus(body, directionsEmptyMessage); err != nil {
		return nil, err
	}

	routes := gjson.GetBytes(body, "routes").Array()
	if len(routes) == 0 {
		return nil, toolerr.EmptyResult(directionsEmptyMessage)
	}
	first := routes[0]

	legs := first.Get("legs").Array()
	if len(legs) == 0 {
		return nil, toolerr.EmptyResult(directionsEmptyMessage)
	}
	leg := legs[0]

	route := &Route{
		Summary:      first.Get("summary").String(),
		StartAddress: leg.Get("start_address").String(),
		EndAddress:   leg.Get("end_address").String(),
		Distance:     fieldres.FirstString(leg, "distance.text", "distance.value"),
		Duration:     fieldres.FirstString(leg, "duration.text", "duration.value"),
	}
	for _, s := range leg.Get("steps").Array() {
		route.Steps = append(route.Steps, Step{
			Instruction: render.StripHTML(fieldres.FirstString(s, "html_instructions", "instructions")),
			Distance:    s.Get("distance.text").String(),
			Duration:    s.Get("duration.text").String(),
		})
	}
	return route, nil
}

func normalizeMatrix(body []byte) (*Matrix, error) {
	if err := checkStatus(body, matrixEmptyMessage); err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(body)
	m := &Matrix{}
	for _, o := range doc.Get("origin_addresses").Array() {
		m.Origins = append(m.Origins, o.String())
	}
	for _, d := range doc.Get("destination_addresses").Array() {
		m.Destinations = append(m.Destinations, d.String())
	}

	for _, row := range doc.Get("rows").Array() {
		var cells []MatrixCell
		for _, el := range row.Get("elements").Array() {
			cell := MatrixCell{OK: el.Get("status").String() == "OK"}
			if cell.OK {
				cell.Distance = el.Get("distance.text").String()
				cell.Duration = el.Get("duration.text").String()
			}
			cells = append(cells, cell)
		}
		m.Rows = append(m.Rows, cells)
	}

	if len(m.Rows) == 0 {
		return nil, toolerr.EmptyResult(matrixEmptyMessage)
	}
	return m, nil
}

// RenderRoute renders the primary route with its ordered steps.
func RenderRoute(r *Route) string {
	doc := render.New("Directions")
	if r.Summary != "" {
		doc.Fieldf("Route", "%s", r.Summary)
	}
	doc.Fieldf("From", "%s", r.StartAddress)
	doc.Fieldf("To", "%s", r.EndAddress)
	doc.Fieldf("Distance", "%s", r.Distance)
	doc.Fieldf("Duration", "%s", r.Duration)

	if len(r.Steps) > 0 {
		doc.Section("Steps")
		for i, s := range r.Steps {
			line := fmt.Sprintf("%d. %s", i+1, s.Instruction)
			if s.Distance != "" {
				line += fmt.Sprintf(" (%s", s.Distance)
				if s.Duration != "" {
					line += fmt.Sprintf(", %s", s.Duration)
				}
				line += ")"
			}
			doc.Linef("%s", line)
		}
	}
	return doc.String()
}

// RenderMatrix renders the distance matrix as one block per origin.
// Unreachable pairings render as "unavailable" rather than being dropped,
// so the row shape always matches the request.
func RenderMatrix(m *Matrix) string {
	doc := render.New("Distance Matrix")
	for i, origin := range m.Origins {
		doc.Subsection(fmt.Sprintf("From %s", origin))
		if i >= len(m.Rows) {
			continue
		}
		for j, cell := range m.Rows[i] {
			dest := ""
			if j < len(m.Destinations) {
				dest = m.Destinations[j]
			}
			if cell.OK {
				doc.Bulletf("To %s: %s, %s", dest, cell.Distance, cell.Duration)
			} else {
				doc.Bulletf("To %s: unavailable", dest)
			}
		}
	}
	return doc.String()
}
