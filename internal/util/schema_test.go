package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressArgs struct {
	Message  string  `json:"message" description:"Progress line to surface"`
	Severity *string `json:"severity,omitempty" description:"info, success or error"`
}

func TestSchemaFromStruct(t *testing.T) {
	schema := SchemaFromStruct(progressArgs{})

	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "message")
	require.Contains(t, props, "severity")

	msg := props["message"].(map[string]any)
	assert.Equal(t, "string", msg["type"])
	assert.Equal(t, "Progress line to surface", msg["description"])

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"message"}, required)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":       map[string]any{"type": "string"},
			"max_results": map[string]any{"type": "integer"},
		},
		"required": []string{"query"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"query": "standup notes"}, schema))
	// JSON decodes numbers as float64; whole values still count as integers.
	assert.NoError(t, ValidateParameters(map[string]any{"query": "q", "max_results": float64(5)}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"query": "q", "extra": true}, schema))

	err := ValidateParameters(map[string]any{"max_results": float64(5)}, schema)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "query", verr.Field)

	err = ValidateParameters(map[string]any{"query": "q", "max_results": "five"}, schema)
	require.Error(t, err)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max_results", verr.Field)
}

func TestValidateParametersRequiredFromJSON(t *testing.T) {
	// "required" arrives as []any when a schema round-trips through JSON.
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"to": map[string]any{"type": "string"}},
		"required":   []any{"to"},
	}
	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
}
