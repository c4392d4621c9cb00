package oracle

import "sort"

// Helpers for the JSON-schema maps handed to providers as output constraints.

// Object describes a JSON object; every listed property is required.
func Object(properties map[string]any) map[string]any {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// String describes a string property.
func String(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// Number describes an unbounded number.
func Number(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

// NumberRange describes a number within [min, max].
func NumberRange(description string, min, max float64) map[string]any {
	return map[string]any{"type": "number", "description": description, "minimum": min, "maximum": max}
}

// Enum describes a string restricted to values.
func Enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

// Array describes a list of items with a length window. Zero bounds are omitted.
func Array(description string, items map[string]any, minItems, maxItems int) map[string]any {
	s := map[string]any{"type": "array", "description": description, "items": items}
	if minItems > 0 {
		s["minItems"] = minItems
	}
	if maxItems > 0 {
		s["maxItems"] = maxItems
	}
	return s
}
