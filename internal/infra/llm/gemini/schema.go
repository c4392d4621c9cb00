package gemini

import (
	"google.golang.org/genai"
)

// toSchema converts the JSON-schema maps built by oracle.Object and friends.
// Keywords Gemini does not understand are dropped.
func toSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = schemaType(t)
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if child, ok := raw.(map[string]any); ok {
				s.Properties[name] = toSchema(child)
			}
		}
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = append([]string(nil), req...)
		s.PropertyOrdering = append([]string(nil), req...)
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toSchema(items)
	}
	if enum, ok := m["enum"].([]string); ok {
		s.Enum = append([]string(nil), enum...)
	}
	if v, ok := number(m["minimum"]); ok {
		s.Minimum = genai.Ptr(v)
	}
	if v, ok := number(m["maximum"]); ok {
		s.Maximum = genai.Ptr(v)
	}
	if v, ok := number(m["minItems"]); ok {
		s.MinItems = genai.Ptr(int64(v))
	}
	if v, ok := number(m["maxItems"]); ok {
		s.MaxItems = genai.Ptr(int64(v))
	}
	return s
}

func schemaType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
