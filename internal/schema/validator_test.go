// file: internal/schema/validator_test.go
package schema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var searchSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "string", "minLength": 1},
		"limit": {"type": "integer", "minimum": 1, "maximum": 50}
	},
	"required": ["query"]
}`)

func TestValidator_ValidateArguments_AcceptsConformingArguments(t *testing.T) {
	v := NewValidator(nil)
	err := v.ValidateArguments(context.Background(), "web_search", searchSchema,
		json.RawMessage(`{"query":"golang","limit":5}`))
	assert.NoError(t, err, "Arguments matching the schema should validate.")
}

func TestValidator_ValidateArguments_RejectsMissingRequiredProperty(t *testing.T) {
	v := NewValidator(nil)
	err := v.ValidateArguments(context.Background(), "web_search", searchSchema,
		json.RawMessage(`{"limit":5}`))
	require.Error(t, err, "Arguments missing a required property should fail.")
	assert.True(t, IsValidationFailure(err), "The failure should be an argument validation failure.")
	assert.Contains(t, err.Error(), "query", "The message should name the missing property.")
}

func TestValidator_ValidateArguments_RejectsWrongType(t *testing.T) {
	v := NewValidator(nil)
	err := v.ValidateArguments(context.Background(), "web_search", searchSchema,
		json.RawMessage(`{"query":"golang","limit":"five"}`))
	require.Error(t, err, "Arguments with a mistyped property should fail.")
	assert.True(t, IsValidationFailure(err), "The failure should be an argument validation failure.")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve, "The error should be a ValidationError.")
	assert.Equal(t, "/limit", ve.Context["instancePath"], "The context should point at the failing property.")
}

func TestValidator_ValidateArguments_TreatsEmptyArgumentsAsEmptyObject(t *testing.T) {
	v := NewValidator(nil)
	noRequired := json.RawMessage(`{"type":"object","properties":{}}`)

	err := v.ValidateArguments(context.Background(), "ping_tool", noRequired, nil)
	assert.NoError(t, err, "Omitted arguments should validate against a schema with no required properties.")

	err = v.ValidateArguments(context.Background(), "web_search", searchSchema, nil)
	assert.Error(t, err, "Omitted arguments should fail when the schema requires properties.")
}

func TestValidator_ValidateArguments_RejectsMalformedArgumentJSON(t *testing.T) {
	v := NewValidator(nil)
	err := v.ValidateArguments(context.Background(), "web_search", searchSchema,
		json.RawMessage(`{"query":`))
	require.Error(t, err, "Malformed argument JSON should fail.")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve, "The error should be a ValidationError.")
	assert.Equal(t, ErrInvalidJSONFormat, ve.Code, "Malformed JSON should be reported as a format error.")
	assert.False(t, IsValidationFailure(err), "Malformed JSON is not a schema conformance failure.")
}

func TestValidator_ValidateArguments_ReportsUncompilableSchema(t *testing.T) {
	v := NewValidator(nil)
	bad := json.RawMessage(`{"type":"object","properties":{"q":{"type":"no-such-type"}}}`)

	err := v.ValidateArguments(context.Background(), "broken_tool", bad, json.RawMessage(`{}`))
	require.Error(t, err, "An invalid schema document should fail.")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve, "The error should be a ValidationError.")
	assert.Equal(t, ErrSchemaCompileFailed, ve.Code, "A bad schema should be reported as a compile failure.")
}

func TestValidator_SchemaCache_RecompilesWhenSchemaChanges(t *testing.T) {
	v := NewValidator(nil)
	lax := json.RawMessage(`{"type":"object"}`)
	strict := json.RawMessage(`{"type":"object","required":["query"]}`)

	require.NoError(t,
		v.ValidateArguments(context.Background(), "web_search", lax, json.RawMessage(`{}`)),
		"The lax schema should accept an empty object.")
	assert.Error(t,
		v.ValidateArguments(context.Background(), "web_search", strict, json.RawMessage(`{}`)),
		"A replaced schema should take effect instead of the cached one.")
}
