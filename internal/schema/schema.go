// Package schema declares, per tool, the accepted input fields and validates
// caller-supplied arguments against them before any network call is made.
//
// A tool's parameter surface is a single declarative Object; it is both the
// validator and the source of the JSON input schema advertised over MCP,
// so the two can never drift apart.
package schema

import (
	"fmt"
	"sort"

	"github.com/nimbuslab/gtools/internal/toolerr"
)

type FieldType string

const (
	TypeString      FieldType = "string"
	TypeNumber      FieldType = "number"
	TypeInteger     FieldType = "integer"
	TypeBoolean     FieldType = "boolean"
	TypeStringArray FieldType = "string_array"
	TypeObjectArray FieldType = "object_array"
)

// Field describes one accepted parameter.
type Field struct {
	Type        FieldType
	Description string
	Required    bool
	// Default is applied when an optional field is absent. A nil Default on
	// an optional field means the field stays absent, which request builders
	// rely on to omit parameters instead of sending empty values.
	Default any
	// Enum restricts a string field to a fixed value set. An empty Enum on
	// a string field means any value is accepted.
	Enum []string
}

// Object is the full parameter declaration for one tool.
type Object struct {
	Fields map[string]Field
}

// Request is a validated, immutable parameter set.
type Request struct {
	values map[string]any
}

// Validate checks raw against the declaration, applies defaults, and returns
// an immutable Request. Failures name the offending field and the expected
// type or value set.
func (o Object) Validate(raw map[string]any) (*Request, error) {
	values := make(map[string]any, len(o.Fields))

	for name, field := range o.Fields {
		v, present := raw[name]
		if !present || v == nil {
			if field.Required {
				return nil, toolerr.Validatef("missing required parameter %q", name)
			}
			if field.Default != nil {
				values[name] = field.Default
			}
			continue
		}

		coerced, err := coerce(name, field, v)
		if err != nil {
			return nil, err
		}
		values[name] = coerced
	}

	for name := range raw {
		if _, known := o.Fields[name]; !known {
			return nil, toolerr.Validatef("unknown parameter %q", name)
		}
	}

	return &Request{values: values}, nil
}

func coerce(name string, field Field, v any) (any, error) {
	switch field.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, toolerr.Validatef("parameter %q: expected a string, got %T", name, v)
		}
		if len(field.Enum) > 0 && !contains(field.Enum, s) {
			return nil, toolerr.Validatef("parameter %q: %q is not one of %v", name, s, field.Enum)
		}
		return s, nil

	case TypeNumber:
		f, ok := toFloat(v)
		if !ok {
			return nil, toolerr.Validatef("parameter %q: expected a number, got %T", name, v)
		}
		return f, nil

	case TypeInteger:
		f, ok := toFloat(v)
		if !ok || f != float64(int(f)) {
			return nil, toolerr.Validatef("parameter %q: expected an integer, got %v", name, v)
		}
		return int(f), nil

	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, toolerr.Validatef("parameter %q: expected a boolean, got %T", name, v)
		}
		return b, nil

	case TypeStringArray:
		items, ok := v.([]any)
		if !ok {
			if ss, isStrings := v.([]string); isStrings {
				return ss, nil
			}
			return nil, toolerr.Validatef("parameter %q: expected an array of strings, got %T", name, v)
		}
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, isString := item.(string)
			if !isString {
				return nil, toolerr.Validatef("parameter %q: element %d is not a string", name, i)
			}
			out = append(out, s)
		}
		return out, nil

	case TypeObjectArray:
		items, ok := v.([]any)
		if !ok {
			if ms, isMaps := v.([]map[string]any); isMaps {
				return ms, nil
			}
			return nil, toolerr.Validatef("parameter %q: expected an array of objects, got %T", name, v)
		}
		out := make([]map[string]any, 0, len(items))
		for i, item := range items {
			m, isMap := item.(map[string]any)
			if !isMap {
				return nil, toolerr.Validatef("parameter %q: element %d is not an object", name, i)
			}
			out = append(out, m)
		}
		return out, nil

	default:
		return nil, toolerr.Validatef("parameter %q: unsupported field type %q", name, field.Type)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func contains(set []string, s string) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

// Has reports whether the parameter was supplied or defaulted.
func (r *Request) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

func (r *Request) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

func (r *Request) Int(name string) int {
	switch n := r.values[name].(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func (r *Request) Float(name string) float64 {
	switch n := r.values[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func (r *Request) Bool(name string) bool {
	b, _ := r.values[name].(bool)
	return b
}

func (r *Request) Strings(name string) []string {
	ss, _ := r.values[name].([]string)
	return ss
}

func (r *Request) Objects(name string) []map[string]any {
	ms, _ := r.values[name].([]map[string]any)
	return ms
}

// InputSchema renders the declaration as a JSON-schema object map for MCP
// tool registration. Properties iterate in sorted order so the advertised
// schema is stable across runs.
func (o Object) InputSchema() map[string]any {
	properties := make(map[string]any, len(o.Fields))
	var required []string

	names := make([]string, 0, len(o.Fields))
	for name := range o.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := o.Fields[name]
		properties[name] = fieldSchema(field)
		if field.Required {
			required = append(required, name)
		}
	}

	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func fieldSchema(field Field) map[string]any {
	s := map[string]any{}

	switch field.Type {
	case TypeString:
		s["type"] = "string"
		if len(field.Enum) > 0 {
			s["enum"] = field.Enum
		}
	case TypeNumber:
		s["type"] = "number"
	case TypeInteger:
		s["type"] = "integer"
	case TypeBoolean:
		s["type"] = "boolean"
	case TypeStringArray:
		s["type"] = "array"
		s["items"] = map[string]any{"type": "string"}
	case TypeObjectArray:
		s["type"] = "array"
		s["items"] = map[string]any{"type": "object"}
	}

	if field.Description != "" {
		s["description"] = field.Description
	}
	if field.Default != nil {
		s["default"] = field.Default
	}
	return s
}

// Describe is a convenience for building description strings that embed a
// value list, e.g. known calendar ids. Purely informational; never enforced.
func Describe(base string, options []string) string {
	if len(options) == 0 {
		return base
	}
	return fmt.Sprintf("%s Known values: %v", base, options)
}
