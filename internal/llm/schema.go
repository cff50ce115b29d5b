package llm

import "github.com/conferente/labelscan/constants"

// BuildLabelJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We send it to the model as the output contract and use the
// same map to validate the response locally.
func BuildLabelJSONSchema() map[string]any {
	props := map[string]any{
		"product":  map[string]any{"type": "string", "minLength": 1},
		"type":     map[string]any{"type": "string", "enum": constants.ProductTypeStrings()},
		"supplier": map[string]any{"type": "string"},
		"sif":      map[string]any{"type": "string"},

		"net_weight_kg":   weightProp(),
		"gross_weight_kg": weightProp(),
		"tare_kg":         weightProp(),

		"production_date": dateProp(),
		"expiration_date": dateProp(),

		"batch":             map[string]any{"type": "string", "minLength": 1, "maxLength": 30},
		"label_temperature": map[string]any{"type": "number", "minimum": -60.0, "maximum": 60.0},
		"notes":             map[string]any{"type": "string"},
		"confidence":        map[string]any{"type": "string", "enum": []string{"high", "medium", "low"}},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"confidence"},
	}
}

func weightProp() map[string]any {
	return map[string]any{
		"type":             "number",
		"exclusiveMinimum": 0.0,
		"maximum":          500.0,
	}
}

func dateProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d{2}/\d{2}/\d{4}$`,
	}
}
