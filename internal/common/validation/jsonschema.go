package validation

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema exports the named fields (all fields when none are given) as a
// JSON Schema object document. The document accepts exactly those keys.
func (s *Schema) JSONSchema(fields ...string) (map[string]interface{}, error) {
	if len(fields) == 0 {
		for _, f := range s.fields {
			fields = append(fields, f.Name)
		}
	}

	properties := make(map[string]interface{}, len(fields))
	required := make([]interface{}, 0, len(fields))
	for _, name := range fields {
		f, ok := s.Field(name)
		if !ok {
			return nil, fmt.Errorf("schema %s: unknown field %q", s.name, name)
		}
		properties[name] = fieldProperty(f)
		// Every exported key must be present, optional ones may be empty.
		required = append(required, name)
	}

	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                s.name,
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}, nil
}

func fieldProperty(f Field) map[string]interface{} {
	prop := map[string]interface{}{"type": "string"}

	minLen, maxLen := -1, -1
	var patterns []string
	var enum []interface{}
	for _, r := range f.Rules {
		switch r.Kind {
		case KindRequired:
			if minLen < 1 {
				minLen = 1
			}
		case KindPattern:
			patterns = append(patterns, r.Pattern)
		case KindMinLength:
			if r.Length > minLen {
				minLen = r.Length
			}
		case KindMaxLength:
			if maxLen < 0 || r.Length < maxLen {
				maxLen = r.Length
			}
		case KindExactLength:
			if r.Length > minLen {
				minLen = r.Length
			}
			if maxLen < 0 || r.Length < maxLen {
				maxLen = r.Length
			}
		case KindOneOf:
			enum = enum[:0]
			for _, v := range r.Values {
				enum = append(enum, v)
			}
		}
	}

	constrained := false
	if minLen > 0 {
		prop["minLength"] = minLen
		constrained = true
	}
	if maxLen >= 0 {
		prop["maxLength"] = maxLen
		constrained = true
	}
	switch len(patterns) {
	case 0:
	case 1:
		prop["pattern"] = patterns[0]
		constrained = true
	default:
		all := make([]interface{}, 0, len(patterns))
		for _, p := range patterns {
			all = append(all, map[string]interface{}{"pattern": p})
		}
		prop["allOf"] = all
		constrained = true
	}
	if enum != nil {
		prop["enum"] = enum
		constrained = true
	}

	if !f.Required() && constrained {
		return map[string]interface{}{
			"anyOf": []interface{}{
				map[string]interface{}{"type": "string", "maxLength": 0},
				prop,
			},
		}
	}
	return prop
}

// VerifyPayload checks a payload (struct or map) against an exported JSON
// schema document.
func VerifyPayload(schema map[string]interface{}, payload interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool {
		if out.Errors[i].Field != out.Errors[j].Field {
			return out.Errors[i].Field < out.Errors[j].Field
		}
		return out.Errors[i].Message < out.Errors[j].Message
	})
	return out, nil
}

// VerifyPayload exports the named fields and verifies payload against them.
func (s *Schema) VerifyPayload(payload interface{}, fields ...string) (*ValidationResult, error) {
	doc, err := s.JSONSchema(fields...)
	if err != nil {
		return nil, err
	}
	return VerifyPayload(doc, payload)
}
