// Package mcperrors defines domain-specific error types and codes for the
// MCP layer. These errors carry more context than plain Go errors and map
// internal failures onto JSON-RPC error responses at the transport boundary.
//
// The taxonomy has two tiers. Protocol errors (malformed envelope, unknown
// method, bad params) map onto the five reserved JSON-RPC codes. Domain
// failures inside a tool call never appear here at all; they travel as an
// IsError ToolResult inside a successful response. The types below cover
// the remaining cases: routing misses on resources and prompts, provider
// failures, and session-sequence violations.
package mcperrors

// file: internal/mcp/mcperrors/errors.go

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
)

// ErrorCode categorizes MCP-layer errors. JSON-RPC reserved codes are used
// directly where an equivalent exists; custom codes live in the
// server-defined -32000..-32099 range or in positive domain ranges.
type ErrorCode int

// MCP-layer error codes.
const (
	// Routing misses for statically-identified capabilities (3000-3999).
	ErrResourceNotFound ErrorCode = 3000 + iota
	ErrPromptNotFound
)

const (
	// Provider/backend failures surfaced through a provider (5000-5999).
	ErrProviderFailure ErrorCode = 5000 + iota
)

// Codes mirroring the JSON-RPC reserved range.
const (
	ErrParseError     ErrorCode = mcptypes.CodeParseError
	ErrInvalidRequest ErrorCode = mcptypes.CodeInvalidRequest
	ErrMethodNotFound ErrorCode = mcptypes.CodeMethodNotFound
	ErrInvalidParams  ErrorCode = mcptypes.CodeInvalidParams
	ErrInternalError  ErrorCode = mcptypes.CodeInternalError

	// Custom server-defined protocol codes.
	ErrRequestSequence ErrorCode = -32001 // Message not valid in the current session state.
)

// BaseError is the common base for custom MCP error types. It embeds the
// standard error interface and adds a code plus key-value context.
type BaseError struct {
	// Code is the numeric category, one of the constants above.
	Code ErrorCode
	// Message is a human-readable description, primarily for logging.
	Message string
	// Cause is the underlying error, enabling errors.Is/As traversal.
	Cause error
	// Context holds additional key-value details (resource URI, method name).
	Context map[string]any
}

// Error implements the standard error interface.
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("mcp error (code %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("mcp error (code %d): %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key-value pair to the error's context map and returns
// the error for chaining.
func (e *BaseError) WithContext(key string, value any) *BaseError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ResourceError is a failure to locate or read a resource by URI. An
// unknown URI is a hard failure at the call boundary; there is no error
// flag on ResourceContent.
type ResourceError struct {
	BaseError
}

// PromptError is a failure to locate or render a prompt by name. Like
// resources, prompt misses are hard failures.
type PromptError struct {
	BaseError
}

// ProtocolError is a violation of the JSON-RPC/MCP message rules.
type ProtocolError struct {
	BaseError
}

// ProviderError wraps a backend failure surfaced by a provider's
// ReadResource or GetPrompt. Tool-side backend failures take the IsError
// route instead and never become a ProviderError.
type ProviderError struct {
	BaseError
}

// NewResourceNotFoundError creates the hard-miss error for resources/read
// on a URI no registered provider declares.
func NewResourceNotFoundError(uri string) error {
	return &ResourceError{BaseError: BaseError{
		Code:    ErrResourceNotFound,
		Message: fmt.Sprintf("resource not found: %s", uri),
		Context: map[string]any{"uri": uri},
	}}
}

// NewPromptNotFoundError creates the hard-miss error for prompts/get on a
// name no registered provider declares.
func NewPromptNotFoundError(name string) error {
	return &PromptError{BaseError: BaseError{
		Code:    ErrPromptNotFound,
		Message: fmt.Sprintf("prompt not found: %s", name),
		Context: map[string]any{"name": name},
	}}
}

// NewMethodNotFoundError creates an error for an unrecognized method name.
func NewMethodNotFoundError(method string) error {
	return &ProtocolError{BaseError: BaseError{
		Code:    ErrMethodNotFound,
		Message: fmt.Sprintf("method not found: %s", method),
		Context: map[string]any{"method": method},
	}}
}

// NewInvalidParamsError creates an error for malformed request parameters.
func NewInvalidParamsError(message string, cause error) error {
	return &ProtocolError{BaseError: BaseError{
		Code:    ErrInvalidParams,
		Message: message,
		Cause:   errors.WithStack(cause),
	}}
}

// NewInvalidRequestError creates an error for a structurally invalid request.
func NewInvalidRequestError(message string) error {
	return &ProtocolError{BaseError: BaseError{
		Code:    ErrInvalidRequest,
		Message: message,
	}}
}

// NewRequestSequenceError creates an error for a method arriving in a
// session state that does not permit it.
func NewRequestSequenceError(message string, context map[string]any) error {
	return &ProtocolError{BaseError: BaseError{
		Code:    ErrRequestSequence,
		Message: message,
		Context: context,
	}}
}

// NewInternalError creates a generic internal failure.
func NewInternalError(message string, cause error) error {
	return &ProtocolError{BaseError: BaseError{
		Code:    ErrInternalError,
		Message: message,
		Cause:   errors.WithStack(cause),
	}}
}

// NewProviderError wraps a backend failure from a provider operation.
func NewProviderError(message string, cause error) error {
	return &ProviderError{BaseError: BaseError{
		Code:    ErrProviderFailure,
		Message: message,
		Cause:   errors.WithStack(cause),
	}}
}
