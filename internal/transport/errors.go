// Package transport defines interfaces and implementations for sending and
// receiving framed MCP messages. This file defines the structured error
// type used within the transport layer.
package transport

// file: internal/transport/errors.go

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorCode categorizes transport-layer errors.
type ErrorCode int

// Transport error codes.
const (
	// ErrGeneric is a general or unspecified transport error.
	ErrGeneric ErrorCode = iota + 1000
	// ErrInvalidMessage indicates a message violated framing rules.
	ErrInvalidMessage
	// ErrMessageTooLarge indicates a message exceeded MaxMessageSize.
	ErrMessageTooLarge
	// ErrTransportClosed indicates an operation on a closed transport.
	ErrTransportClosed
	// ErrParseFailed indicates the message was not syntactically valid JSON.
	ErrParseFailed
)

// Error is a transport-level error with a code, cause, and context.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error [%d]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key-value detail and returns the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewError creates a transport error with the given code.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// NewClosedError creates an error for an operation on a closed transport.
func NewClosedError(operation string) *Error {
	return &Error{
		Code:    ErrTransportClosed,
		Message: fmt.Sprintf("transport closed during %s", operation),
	}
}

// NewMessageSizeError creates an error for an oversized message.
func NewMessageSizeError(size, maxSize int) *Error {
	e := &Error{
		Code:    ErrMessageTooLarge,
		Message: fmt.Sprintf("message size %d exceeds limit %d", size, maxSize),
	}
	return e.WithContext("size", size).WithContext("maxSize", maxSize)
}

// NewParseError creates an error for syntactically invalid JSON.
func NewParseError(message []byte, cause error) *Error {
	e := &Error{Code: ErrParseFailed, Message: "message is not valid JSON", Cause: cause}
	return e.WithContext("preview", preview(message))
}

// IsClosedError reports whether err indicates a closed transport.
func IsClosedError(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Code == ErrTransportClosed
}

// IsParseError reports whether err indicates unparseable message bytes.
func IsParseError(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Code == ErrParseFailed
}
