// Package schema validates tool-call arguments against the JSON Schema each
// tool declares. Schemas are compiled once and cached; validation failures
// carry the instance path and keyword that failed so tool callers get a
// usable message rather than a raw library error.
package schema

// file: internal/schema/errors.go

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrorCode identifies the category of a schema validation failure.
type ErrorCode int

const (
	// ErrSchemaCompileFailed indicates the tool's declared schema itself
	// does not compile.
	ErrSchemaCompileFailed ErrorCode = iota + 2000
	// ErrInvalidJSONFormat indicates the arguments were not valid JSON.
	ErrInvalidJSONFormat
	// ErrValidationFailed indicates the arguments do not conform to the
	// tool's schema.
	ErrValidationFailed
)

// ValidationError is the error returned for schema failures. It carries a
// code, a human-readable message, and context for logging.
type ValidationError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair to the error and returns it.
func (e *ValidationError) WithContext(key string, value any) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewValidationError creates a ValidationError with a stack-traced cause.
func NewValidationError(code ErrorCode, message string, cause error) *ValidationError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &ValidationError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// convertValidationError flattens a jsonschema.ValidationError into a
// ValidationError whose message names the failing instance path.
func convertValidationError(valErr *jsonschema.ValidationError, toolName string) *ValidationError {
	leaf := leafCause(valErr)
	path := "/" + strings.TrimPrefix(leaf.InstanceLocation, "/")
	if leaf.InstanceLocation == "" {
		path = "(root)"
	}

	ve := NewValidationError(
		ErrValidationFailed,
		fmt.Sprintf("Invalid arguments at %s: %s", path, leaf.Message),
		valErr,
	)
	ve.WithContext("tool", toolName)
	ve.WithContext("instancePath", leaf.InstanceLocation)
	ve.WithContext("keywordPath", leaf.KeywordLocation)
	return ve
}

// leafCause descends to the most specific nested cause, which names the
// actual failing keyword rather than the schema root.
func leafCause(valErr *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(valErr.Causes) > 0 {
		valErr = valErr.Causes[0]
	}
	return valErr
}

// IsValidationFailure reports whether err is an argument validation failure
// as opposed to a malformed schema or malformed JSON.
func IsValidationFailure(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == ErrValidationFailed
}
