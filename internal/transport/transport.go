// Package transport defines interfaces and implementations for sending and
// receiving framed MCP messages. The transports here carry opaque message
// bytes; envelope parsing and method dispatch belong to the mcp package.
package transport

// file: internal/transport/transport.go

import (
	"context"
	"encoding/json"
)

// MaxMessageSize is the maximum allowed size for a single JSON-RPC message
// in bytes. Oversized messages are rejected before parsing.
const MaxMessageSize = 1024 * 1024 // 1MB.

// Transport is a bidirectional channel of framed JSON-RPC messages.
// Implementations must be safe for concurrent use.
type Transport interface {
	// ReadMessage reads a single message from the transport. It blocks until
	// a message arrives, the context is canceled, or the transport closes.
	ReadMessage(ctx context.Context) ([]byte, error)

	// WriteMessage sends a single message over the transport.
	WriteMessage(ctx context.Context, message []byte) error

	// Close shuts the transport down. Blocked reads and writes are
	// unblocked and return errors.
	Close() error
}

// ValidateMessage performs the framing-level checks on a raw message: valid
// JSON, the fixed "2.0" version marker, and a size below MaxMessageSize.
// JSON-RPC semantic validation happens later, in the server.
func ValidateMessage(message []byte) error {
	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize)
	}

	var probe struct {
		JSONRPC string `json:"jsonrpc"`
	}
	if err := json.Unmarshal(message, &probe); err != nil {
		return NewParseError(message, err)
	}
	if probe.JSONRPC != "2.0" {
		return NewError(ErrInvalidMessage, "missing or unsupported jsonrpc version", nil).
			WithContext("preview", preview(message))
	}
	return nil
}

// preview returns a short prefix of a message for error context.
func preview(message []byte) string {
	const max = 100
	if len(message) <= max {
		return string(message)
	}
	return string(message[:max])
}
