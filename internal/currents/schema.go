package currents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apierrors "github.com/olgasafonova/currents-mcp-server/internal/errors"
)

// Schema kinds, also used as the metrics label for violations
const (
	SchemaNews       = "news"
	SchemaLanguages  = "languages"
	SchemaRegions    = "regions"
	SchemaCategories = "categories"
)

// Extra members are allowed everywhere; the provider adds fields without notice.
const articleSchema = `{
	"type": "object",
	"required": ["id", "title", "description", "url", "author", "language", "category", "published"],
	"properties": {
		"id":          {"type": "string"},
		"title":       {"type": "string"},
		"description": {"type": "string"},
		"url":         {"type": "string"},
		"author":      {"type": "string"},
		"image":       {"type": ["string", "null"]},
		"language":    {"type": "string"},
		"category":    {"type": "array", "items": {"type": "string"}},
		"published":   {"type": "string"}
	}
}`

var schemaSources = map[string]string{
	SchemaNews: `{
	"type": "object",
	"required": ["status", "news"],
	"properties": {
		"status": {"type": "string"},
		"news":   {"type": "array", "items": ` + articleSchema + `}
	}
}`,
	SchemaLanguages: `{
	"type": "object",
	"required": ["languages", "description", "status"],
	"properties": {
		"languages":   {"type": "object", "additionalProperties": {"type": "string"}},
		"description": {"type": "string"},
		"status":      {"type": "string"}
	}
}`,
	SchemaRegions: `{
	"type": "object",
	"required": ["regions", "description", "status"],
	"properties": {
		"regions":     {"type": "object", "additionalProperties": {"type": "string"}},
		"description": {"type": "string"},
		"status":      {"type": "string"}
	}
}`,
	SchemaCategories: `{
	"type": "object",
	"required": ["categories", "description", "status"],
	"properties": {
		"categories":  {"type": "array", "items": {"type": "string"}},
		"description": {"type": "string"},
		"status":      {"type": "string"}
	}
}`,
}

var schemas = compileSchemas()

func compileSchemas() map[string]*gojsonschema.Schema {
	compiled := make(map[string]*gojsonschema.Schema, len(schemaSources))
	for kind, src := range schemaSources {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("currents: invalid %s schema: %v", kind, err))
		}
		compiled[kind] = s
	}
	return compiled
}

// SchemaDocument returns the JSON Schema text for kind, or "" if unknown.
func SchemaDocument(kind string) string {
	return schemaSources[kind]
}

// Normalize returns a copy of v with every object member whose value is the
// empty string removed, at any depth. Other values are shared, not copied.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if s, ok := val.(string); ok && s == "" {
				continue
			}
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

// ValidateResponse checks payload against the schema for kind after
// normalization. The payload itself is not modified.
func ValidateResponse(kind string, payload any) error {
	schema, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("unknown response schema %q", kind)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(Normalize(payload)))
	if err != nil {
		return apierrors.NewValidationError(kind, "", fmt.Sprintf("response is not a JSON document: %v", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return apierrors.NewValidationError(kind, "", "response does not match schema: "+strings.Join(msgs, "; "))
}

// Decode converts a normalized payload into T. Members that were "" decode
// as their zero value (or nil for pointers).
func Decode[T any](payload any) (T, error) {
	var out T
	data, err := json.Marshal(Normalize(payload))
	if err != nil {
		return out, fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode payload: %w", err)
	}
	return out, nil
}
