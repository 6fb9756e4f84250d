// Package mcptypes defines the shared protocol data model for the MCP
// server: the JSON-RPC envelope, the content vocabularies, and the
// capability/handshake types. It is imported by the router, the server,
// and every provider, and deliberately contains no behavior beyond
// serialization.
package mcptypes

// file: internal/mcp/mcptypes/jsonrpc.go

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// JSONRPCVersion is the fixed protocol version marker carried by every message.
const JSONRPCVersion = "2.0"

// Reserved JSON-RPC 2.0 error codes. These identify protocol-layer
// failures only; a failing tool call is never represented with them.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// RequestID is the caller-supplied correlation identifier: a tagged union
// of string and integer. The router never interprets it; it exists solely
// so a transport can correlate responses with requests.
type RequestID struct {
	value any
}

// NewStringID creates a string-valued request ID.
func NewStringID(s string) RequestID {
	return RequestID{value: s}
}

// NewNumberID creates an integer-valued request ID.
func NewNumberID(n int64) RequestID {
	return RequestID{value: n}
}

// IsNil reports whether the ID carries no value (absent or JSON null).
func (id RequestID) IsNil() bool {
	return id.value == nil
}

// Value returns the underlying string or int64 value, or nil.
func (id RequestID) Value() any {
	return id.value
}

// String renders the ID for logging.
func (id RequestID) String() string {
	if id.value == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", id.value)
}

// MarshalJSON serializes the ID as a bare string or number.
func (id RequestID) MarshalJSON() ([]byte, error) {
	if id.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a string, an integer, or null. Anything else
// (floats, objects, arrays) is rejected as malformed.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		id.value = s
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		id.value = n
		return nil
	}

	return errors.Newf("request id must be a string or an integer, got %s", string(data))
}

// JSONRPCRequest is the request envelope. Params is kept opaque; each
// method handler parses it into its own parameter type.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      RequestID       `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCNotification is a request without an ID; no response is expected.
type JSONRPCNotification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is the response envelope. Exactly one of Result and
// Error is populated; absent fields are omitted from the serialized form.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      RequestID       `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError is the error member of a failed response.
type JSONRPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface so a JSONRPCError can travel
// through Go error paths inside the server.
func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewParseError builds a JSONRPCError with the reserved ParseError code.
func NewParseError(message string) *JSONRPCError {
	return &JSONRPCError{Code: CodeParseError, Message: message}
}

// NewInvalidRequestError builds a JSONRPCError with the reserved InvalidRequest code.
func NewInvalidRequestError(message string) *JSONRPCError {
	return &JSONRPCError{Code: CodeInvalidRequest, Message: message}
}

// NewMethodNotFoundError builds a JSONRPCError with the reserved MethodNotFound code.
func NewMethodNotFoundError(message string) *JSONRPCError {
	return &JSONRPCError{Code: CodeMethodNotFound, Message: message}
}

// NewInvalidParamsError builds a JSONRPCError with the reserved InvalidParams code.
func NewInvalidParamsError(message string) *JSONRPCError {
	return &JSONRPCError{Code: CodeInvalidParams, Message: message}
}

// NewInternalError builds a JSONRPCError with the reserved InternalError code.
func NewInternalError(message string) *JSONRPCError {
	return &JSONRPCError{Code: CodeInternalError, Message: message}
}

// NewResponse builds a success response around an already-serialized result.
func NewResponse(id RequestID, result json.RawMessage) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// NewErrorResponse builds an error response.
func NewErrorResponse(id RequestID, rpcErr *JSONRPCError) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: JSONRPCVersion, ID: id, Error: rpcErr}
}
