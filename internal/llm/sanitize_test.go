package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLabelJSON(t *testing.T) {
	raw := []byte(`{
		"product": "  costela suina  ",
		"lot": "AB12",
		"net_weight": "14,2 kg",
		"type": "CONGELADO",
		"confidence": "HIGH",
		"hallucinated_field": true,
		"supplier": null
	}`)

	cleaned, adjusted, err := SanitizeLabelJSON(raw, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, adjusted)

	var m map[string]any
	require.NoError(t, json.Unmarshal(cleaned, &m))

	assert.Equal(t, "costela suina", m["product"])
	assert.Equal(t, "AB12", m["batch"])
	assert.Equal(t, "frozen", m["type"])
	assert.Equal(t, "high", m["confidence"])
	assert.InDelta(t, 14.2, m["net_weight_kg"], 1e-9)
	assert.NotContains(t, m, "hallucinated_field")
	assert.NotContains(t, m, "supplier")
	assert.NotContains(t, m, "lot")

	require.NoError(t, ValidateLabelJSON(cleaned))
}

func TestSanitizeDefaultsMissingConfidence(t *testing.T) {
	cleaned, _, err := SanitizeLabelJSON([]byte(`{"product":"ovo"}`), nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(cleaned, &m))
	assert.Equal(t, "low", m["confidence"])
}

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject("```json\n{\"a\":1}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	got, err = ExtractJSONObject(`Here you go: {"a":{"b":2}} hope it helps`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"b":2}}`, string(got))

	_, err = ExtractJSONObject("no json here")
	assert.Error(t, err)
}
