package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/gtools/internal/toolerr"
)

func TestValidateAppliesDefaults(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"query":       {Type: TypeString, Required: true},
		"max_results": {Type: TypeInteger, Default: 5},
		"summary":     {Type: TypeBoolean, Default: true},
	}}

	req, err := obj.Validate(map[string]any{"query": "pizza"})
	require.NoError(t, err)

	assert.Equal(t, "pizza", req.String("query"))
	assert.Equal(t, 5, req.Int("max_results"))
	assert.True(t, req.Bool("summary"))
}

func TestValidateMissingRequired(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"address": {Type: TypeString, Required: true},
	}}

	_, err := obj.Validate(map[string]any{})
	require.Error(t, err)
	assert.Equal(t, toolerr.KindValidation, toolerr.KindOf(err))
	assert.Contains(t, err.Error(), `"address"`)
}

func TestValidateRejectsUnknownParameter(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"query": {Type: TypeString},
	}}

	_, err := obj.Validate(map[string]any{"query": "x", "bogus": 1})
	require.Error(t, err)
	assert.Equal(t, toolerr.KindValidation, toolerr.KindOf(err))
	assert.Contains(t, err.Error(), `"bogus"`)
}

func TestValidateOptionalWithoutDefaultStaysAbsent(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"radius": {Type: TypeNumber},
	}}

	req, err := obj.Validate(map[string]any{})
	require.NoError(t, err)
	assert.False(t, req.Has("radius"))
}

func TestValidateEnum(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"mode": {Type: TypeString, Enum: []string{"driving", "walking"}},
	}}

	req, err := obj.Validate(map[string]any{"mode": "walking"})
	require.NoError(t, err)
	assert.Equal(t, "walking", req.String("mode"))

	_, err = obj.Validate(map[string]any{"mode": "teleport"})
	require.Error(t, err)
	assert.Equal(t, toolerr.KindValidation, toolerr.KindOf(err))
	assert.Contains(t, err.Error(), "teleport")
}

func TestValidateCoercesJSONNumbers(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"max_results": {Type: TypeInteger},
		"radius":      {Type: TypeNumber},
	}}

	// JSON decoding hands every number over as float64.
	req, err := obj.Validate(map[string]any{
		"max_results": float64(7),
		"radius":      float64(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, req.Int("max_results"))
	assert.Equal(t, 1500.0, req.Float("radius"))

	_, err = obj.Validate(map[string]any{"max_results": 2.5})
	require.Error(t, err)
}

func TestValidateTypeMismatch(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"query": {Type: TypeString},
	}}

	_, err := obj.Validate(map[string]any{"query": 42})
	require.Error(t, err)
	assert.Equal(t, toolerr.KindValidation, toolerr.KindOf(err))
}

func TestValidateStringArray(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"origins": {Type: TypeStringArray},
	}}

	req, err := obj.Validate(map[string]any{"origins": []any{"NYC", "Boston"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"NYC", "Boston"}, req.Strings("origins"))

	_, err = obj.Validate(map[string]any{"origins": []any{"NYC", 3}})
	require.Error(t, err)
}

func TestValidateObjectArray(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"legs": {Type: TypeObjectArray},
	}}

	req, err := obj.Validate(map[string]any{"legs": []any{
		map[string]any{"departure_id": "JFK"},
	}})
	require.NoError(t, err)
	legs := req.Objects("legs")
	require.Len(t, legs, 1)
	assert.Equal(t, "JFK", legs[0]["departure_id"])
}

func TestInputSchema(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"query":       {Type: TypeString, Required: true, Description: "Search text"},
		"max_results": {Type: TypeInteger, Default: 5},
		"mode":        {Type: TypeString, Enum: []string{"driving", "walking"}},
	}}

	s := obj.InputSchema()
	assert.Equal(t, "object", s["type"])

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, props, 3)

	query := props["query"].(map[string]any)
	assert.Equal(t, "string", query["type"])
	assert.Equal(t, "Search text", query["description"])

	max := props["max_results"].(map[string]any)
	assert.Equal(t, 5, max["default"])

	mode := props["mode"].(map[string]any)
	assert.Equal(t, []string{"driving", "walking"}, mode["enum"])

	assert.Equal(t, []string{"query"}, s["required"])
}

func TestInputSchemaOmitsRequiredWhenEmpty(t *testing.T) {
	obj := Object{Fields: map[string]Field{
		"query": {Type: TypeString},
	}}
	_, present := obj.InputSchema()["required"]
	assert.False(t, present)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Calendar id.", Describe("Calendar id.", nil))
	assert.Equal(t,
		"Calendar id. Known values: [primary work]",
		Describe("Calendar id.", []string{"primary", "work"}))
}
