// Package mcperrors defines domain-specific error types and codes for the MCP layer.
package mcperrors

// file: internal/mcp/mcperrors/mapping.go

import (
	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
)

// ToJSONRPCError translates an MCP-layer error into the wire error the
// transport boundary must answer with.
//
// Routing misses on resources and prompts become InvalidParams: the client
// referenced a static identifier that does not exist, which is a parameter
// problem, not a server fault. Provider/backend failures become
// InternalError. Codes already in the JSON-RPC range pass through
// unchanged. Anything unrecognized degrades to InternalError.
func ToJSONRPCError(err error) *mcptypes.JSONRPCError {
	if err == nil {
		return nil
	}

	// A wire error produced directly by a handler passes through.
	var rpcErr *mcptypes.JSONRPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	var base *BaseError
	var re *ResourceError
	var pe *PromptError
	var proto *ProtocolError
	var prov *ProviderError
	switch {
	case errors.As(err, &re):
		base = &re.BaseError
	case errors.As(err, &pe):
		base = &pe.BaseError
	case errors.As(err, &proto):
		base = &proto.BaseError
	case errors.As(err, &prov):
		base = &prov.BaseError
	}

	if base == nil {
		return mcptypes.NewInternalError(err.Error())
	}

	switch base.Code {
	case ErrResourceNotFound, ErrPromptNotFound:
		return mcptypes.NewInvalidParamsError(base.Message)
	case ErrParseError:
		return mcptypes.NewParseError(base.Message)
	case ErrInvalidRequest, ErrRequestSequence:
		return mcptypes.NewInvalidRequestError(base.Message)
	case ErrMethodNotFound:
		return mcptypes.NewMethodNotFoundError(base.Message)
	case ErrInvalidParams:
		return mcptypes.NewInvalidParamsError(base.Message)
	case ErrProviderFailure:
		return mcptypes.NewInternalError(base.Message)
	default:
		return mcptypes.NewInternalError(base.Message)
	}
}

// IsNotFound reports whether err is a resource or prompt routing miss.
func IsNotFound(err error) bool {
	var re *ResourceError
	if errors.As(err, &re) && re.Code == ErrResourceNotFound {
		return true
	}
	var pe *PromptError
	return errors.As(err, &pe) && pe.Code == ErrPromptNotFound
}
