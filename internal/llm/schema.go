package llm

import (
	"encoding/json"

	"github.com/joseph-ayodele/rfp-extractor/constants"
)

var (
	stringFields = []string{
		"clientName", "clientNameOriginal", "projectName", "projectNameOriginal",
		"projectDescription", "scopeOfWork", "evaluationCriteria",
	}
	arrayFields = []string{"requiredDeliverables", "importantDates"}
)

// BuildRFPJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We send it to the model as an output constraint and use it locally to validate
// the defaulted reply, so every top-level key is required.
func BuildRFPJSONSchema() map[string]any {
	props := map[string]any{}
	for _, f := range stringFields {
		props[f] = map[string]any{"type": "string"}
	}
	props["requiredDeliverables"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"item":   map[string]any{"type": "string", "minLength": 1},
				"source": map[string]any{"type": "string", "enum": []string{string(constants.Verbatim), string(constants.Inferred)}},
			},
			"required": []string{"item", "source"},
		},
	}
	props["importantDates"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"date":  map[string]any{"type": "string", "minLength": 1},
				"type":  map[string]any{"type": "string"},
			},
			"required": []string{"title", "date"},
		},
	}
	props["submissionRequirements"] = map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"method":            map[string]any{"type": "string"},
			"email":             map[string]any{"type": "string"},
			"physicalAddress":   map[string]any{"type": "string"},
			"format":            map[string]any{"type": "string"},
			"copies":            map[string]any{"type": "integer", "minimum": 0},
			"otherRequirements": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"method", "format", "otherRequirements"},
	}
	props["confidence"] = map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"type": "number", "minimum": 0.0, "maximum": 1.0,
		},
	}

	required := make([]string, 0, len(props))
	required = append(required, stringFields...)
	required = append(required, arrayFields...)
	required = append(required, "submissionRequirements", "confidence")

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// SchemaPrompt renders the schema for inclusion in the instructions.
func SchemaPrompt() string {
	return "JSON Schema:\n" + mustJSON(BuildRFPJSONSchema())
}
