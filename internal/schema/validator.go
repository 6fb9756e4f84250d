// Package schema validates tool-call arguments against the JSON Schema each
// tool declares.
package schema

// file: internal/schema/validator.go

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// compiledSchema pairs a compiled schema with the raw document it came
// from, so a tool that changes its declared schema is recompiled.
type compiledSchema struct {
	raw    []byte
	schema *jsonschema.Schema
}

// Validator compiles and caches tool input schemas and validates call
// arguments against them. It is safe for concurrent use.
type Validator struct {
	mu     sync.RWMutex
	cache  map[string]*compiledSchema
	logger logging.Logger
}

// NewValidator creates an empty Validator.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Validator{
		cache:  make(map[string]*compiledSchema),
		logger: logger.WithField("component", "schema_validator"),
	}
}

// ValidateArguments validates args against schemaDoc, the input schema the
// tool named toolName declares. A nil or empty args document is validated
// as an empty object, matching how clients omit arguments for tools that
// take none.
func (v *Validator) ValidateArguments(_ context.Context, toolName string, schemaDoc, args json.RawMessage) error {
	schema, err := v.schemaFor(toolName, schemaDoc)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	var instance interface{}
	if err := json.Unmarshal(args, &instance); err != nil {
		return NewValidationError(
			ErrInvalidJSONFormat,
			"Arguments are not valid JSON",
			errors.Wrap(err, "unmarshaling arguments"),
		).WithContext("tool", toolName)
	}

	start := time.Now()
	err = schema.Validate(instance)
	if err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			v.logger.Debug("Argument validation failed.",
				"tool", toolName,
				"duration", time.Since(start),
				"error", valErr.Message)
			return convertValidationError(valErr, toolName)
		}
		return NewValidationError(
			ErrValidationFailed,
			"Argument validation failed unexpectedly",
			errors.Wrap(err, "schema.Validate"),
		).WithContext("tool", toolName)
	}

	v.logger.Debug("Argument validation succeeded.",
		"tool", toolName,
		"duration", time.Since(start))
	return nil
}

// schemaFor returns the compiled schema for toolName, compiling and caching
// it when absent or when the declared document has changed.
func (v *Validator) schemaFor(toolName string, schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	v.mu.RLock()
	cached, ok := v.cache[toolName]
	v.mu.RUnlock()
	if ok && bytes.Equal(cached.raw, schemaDoc) {
		return cached.schema, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	resourceID := fmt.Sprintf("mcp:///tools/%s/input_schema.json", toolName)
	if err := compiler.AddResource(resourceID, bytes.NewReader(schemaDoc)); err != nil {
		return nil, NewValidationError(
			ErrSchemaCompileFailed,
			fmt.Sprintf("Tool '%s' declares an unreadable input schema", toolName),
			errors.Wrap(err, "adding schema resource"),
		).WithContext("tool", toolName)
	}
	schema, err := compiler.Compile(resourceID)
	if err != nil {
		return nil, NewValidationError(
			ErrSchemaCompileFailed,
			fmt.Sprintf("Tool '%s' declares an invalid input schema", toolName),
			errors.Wrap(err, "compiling schema"),
		).WithContext("tool", toolName)
	}

	v.mu.Lock()
	v.cache[toolName] = &compiledSchema{raw: append([]byte(nil), schemaDoc...), schema: schema}
	v.mu.Unlock()

	v.logger.Debug("Compiled tool input schema.", "tool", toolName)
	return schema, nil
}

// Invalidate drops any cached schema for toolName. Callers use it when a
// provider replaces its tool set.
func (v *Validator) Invalidate(toolName string) {
	v.mu.Lock()
	delete(v.cache, toolName)
	v.mu.Unlock()
}
