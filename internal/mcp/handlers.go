// Package mcp implements the Model Context Protocol server loop.
package mcp

// file: internal/mcp/handlers.go

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcperrors"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
	"github.com/alexchoi0/swissknife-mcp/internal/schema"
)

// envelope is the parsed shape of an incoming message before method
// dispatch. A nil ID marks a notification.
type envelope struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      mcptypes.RequestID `json:"id,omitempty"`
	Method  string             `json:"method"`
	Params  json.RawMessage    `json:"params,omitempty"`
}

// handleMessage parses one raw message, enforces handshake ordering, and
// dispatches it. It returns the serialized response, or nil bytes for a
// notification. A handler panic is converted into an internal error so one
// bad provider cannot take the session down.
func (s *Server) handleMessage(ctx context.Context, msgBytes []byte) (respBytes []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered from panic in message handler.",
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()))
			respBytes = nil
			err = mcperrors.NewInternalError(fmt.Sprintf("internal error handling request: %v", r), nil)
		}
	}()

	var env envelope
	if unmarshalErr := json.Unmarshal(msgBytes, &env); unmarshalErr != nil {
		return nil, mcptypes.NewParseError(unmarshalErr.Error())
	}
	if env.Method == "" {
		return nil, mcptypes.NewInvalidRequestError("missing method")
	}

	if env.ID.IsNil() {
		s.handleNotification(ctx, env)
		return nil, nil
	}

	if seqErr := s.session.ValidateMethod(env.Method); seqErr != nil {
		return nil, seqErr
	}

	start := time.Now()
	result, dispatchErr := s.dispatch(ctx, env)
	s.metrics.RecordRequest(env.Method, time.Since(start), dispatchErr == nil)
	if dispatchErr != nil {
		return nil, dispatchErr
	}

	resultBytes, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return nil, mcperrors.NewInternalError("marshaling result", marshalErr)
	}
	return json.Marshal(mcptypes.NewResponse(env.ID, resultBytes))
}

// handleNotification processes a message without an ID. Notifications
// never produce a response, so failures are logged and dropped.
func (s *Server) handleNotification(ctx context.Context, env envelope) {
	switch env.Method {
	case "notifications/initialized":
		if err := s.session.ValidateMethod(env.Method); err != nil {
			s.logger.Warn("Ignoring out-of-order initialized notification.", "error", err)
			return
		}
		if err := s.session.MarkClientInitialized(ctx); err != nil {
			s.logger.Warn("Failed to record client initialization.", "error", err)
			return
		}
		s.logger.Info("Client completed initialization handshake.")
	case "notifications/cancelled":
		s.logger.Debug("Client cancelled a request.", "params", string(env.Params))
	default:
		s.logger.Debug("Ignoring unrecognized notification.", "method", env.Method)
	}
}

// dispatch routes a request to its method handler.
func (s *Server) dispatch(ctx context.Context, env envelope) (any, error) {
	switch env.Method {
	case "initialize":
		return s.handleInitialize(ctx, env.Params)
	case "ping":
		return struct{}{}, nil
	case "tools/list":
		return &mcptypes.ListToolsResult{Tools: s.router.ListTools()}, nil
	case "tools/call":
		return s.handleToolsCall(ctx, env.Params)
	case "resources/list":
		return &mcptypes.ListResourcesResult{Resources: s.router.ListResources()}, nil
	case "resources/read":
		return s.handleResourcesRead(ctx, env.Params)
	case "prompts/list":
		return &mcptypes.ListPromptsResult{Prompts: s.router.ListPrompts()}, nil
	case "prompts/get":
		return s.handlePromptsGet(ctx, env.Params)
	case "logging/setLevel":
		return s.handleSetLevel(env.Params)
	default:
		return nil, mcperrors.NewMethodNotFoundError(env.Method)
	}
}

// handleInitialize answers the handshake with the server identity, its
// current capabilities, and optional usage instructions. The protocol
// version echoed is the single version this server implements.
func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (*mcptypes.InitializeResult, error) {
	var req mcptypes.InitializeRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, mcperrors.NewInvalidParamsError("invalid initialize params", err)
		}
	}

	if err := s.session.MarkInitializeReceived(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Initialize request received.",
		"clientName", req.ClientInfo.Name,
		"clientVersion", req.ClientInfo.Version,
		"clientProtocolVersion", req.ProtocolVersion)

	return &mcptypes.InitializeResult{
		ProtocolVersion: mcptypes.ProtocolVersion,
		Capabilities:    s.router.Capabilities(),
		ServerInfo:      s.router.ServerInfo(),
		Instructions:    s.router.Instructions(),
	}, nil
}

// handleToolsCall validates the call arguments against the tool's declared
// schema and dispatches it. Argument validation failures come back as an
// in-band error result, not a protocol error, so the calling model can see
// what it got wrong and retry.
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (*mcptypes.ToolResult, error) {
	var callParams mcptypes.CallToolParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, mcperrors.NewInvalidParamsError("invalid tools/call params", err)
	}
	if callParams.Name == "" {
		return nil, mcperrors.NewInvalidParamsError("tool name is required", nil)
	}

	if s.options.ValidateArguments {
		if declared, ok := s.findTool(callParams.Name); ok {
			if err := s.validator.ValidateArguments(ctx, callParams.Name, declared.InputSchema, callParams.Arguments); err != nil {
				if schema.IsValidationFailure(err) {
					return mcptypes.ErrorResult(err.Error()), nil
				}
				return nil, mcperrors.NewInternalError("tool schema validation", err)
			}
		}
	}

	result, err := s.router.CallTool(ctx, callParams.Name, callParams.Arguments)
	if err != nil {
		return nil, errors.Wrapf(err, "calling tool %q", callParams.Name)
	}
	s.metrics.RecordToolCall(callParams.Name, result.IsError)
	return result, nil
}

// findTool returns the advertised tool declaration for name, if any. An
// unknown name skips validation; the router answers it with its own
// in-band miss result.
func (s *Server) findTool(name string) (mcptypes.Tool, bool) {
	for _, tool := range s.router.ListTools() {
		if tool.Name == name {
			return tool, true
		}
	}
	return mcptypes.Tool{}, false
}

func (s *Server) handleResourcesRead(ctx context.Context, params json.RawMessage) (*mcptypes.ReadResourceResult, error) {
	var readParams mcptypes.ReadResourceParams
	if err := json.Unmarshal(params, &readParams); err != nil {
		return nil, mcperrors.NewInvalidParamsError("invalid resources/read params", err)
	}
	if readParams.URI == "" {
		return nil, mcperrors.NewInvalidParamsError("resource uri is required", nil)
	}

	content, err := s.router.ReadResource(ctx, readParams.URI)
	if err != nil {
		return nil, err
	}
	return &mcptypes.ReadResourceResult{Contents: []mcptypes.ResourceContent{*content}}, nil
}

func (s *Server) handlePromptsGet(ctx context.Context, params json.RawMessage) (*mcptypes.PromptContent, error) {
	var getParams mcptypes.GetPromptParams
	if err := json.Unmarshal(params, &getParams); err != nil {
		return nil, mcperrors.NewInvalidParamsError("invalid prompts/get params", err)
	}
	if getParams.Name == "" {
		return nil, mcperrors.NewInvalidParamsError("prompt name is required", nil)
	}
	return s.router.GetPrompt(ctx, getParams.Name, getParams.Arguments)
}

// handleSetLevel records the client-requested log threshold for the
// session.
func (s *Server) handleSetLevel(params json.RawMessage) (any, error) {
	var levelParams mcptypes.SetLevelParams
	if err := json.Unmarshal(params, &levelParams); err != nil {
		return nil, mcperrors.NewInvalidParamsError("invalid logging/setLevel params", err)
	}
	if !levelParams.Level.Valid() {
		return nil, mcperrors.NewInvalidParamsError(fmt.Sprintf("unknown log level %q", levelParams.Level), nil)
	}

	s.SetMinLogLevel(levelParams.Level)
	s.logger.Info("Client adjusted session log level.", "level", levelParams.Level)
	return struct{}{}, nil
}

// toRPCError maps any handler failure onto a JSON-RPC error object.
func toRPCError(err error) *mcptypes.JSONRPCError {
	if rpcErr := mcperrors.ToJSONRPCError(err); rpcErr != nil {
		return rpcErr
	}
	return mcptypes.NewInternalError("internal server error")
}
