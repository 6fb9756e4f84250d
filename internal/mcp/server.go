// Package mcp implements the Model Context Protocol server loop: it reads
// framed JSON-RPC messages from a transport, enforces the session handshake
// ordering, dispatches methods onto the capability router, and writes
// responses back.
package mcp

// file: internal/mcp/server.go

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcptypes"
	"github.com/alexchoi0/swissknife-mcp/internal/metrics"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/router"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/state"
	"github.com/alexchoi0/swissknife-mcp/internal/schema"
	"github.com/alexchoi0/swissknife-mcp/internal/transport"
)

// ServerOptions contains configurable options for the MCP server.
type ServerOptions struct {
	// RequestTimeout bounds the processing of a single request.
	RequestTimeout time.Duration

	// ValidateArguments enables JSON Schema validation of tools/call
	// arguments before dispatch.
	ValidateArguments bool
}

// DefaultServerOptions returns the options used when none are supplied.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		RequestTimeout:    30 * time.Second,
		ValidateArguments: true,
	}
}

// Server serves one MCP session over one transport. It owns the session
// state machine; the router it dispatches onto may be shared.
type Server struct {
	router    *router.Router
	validator *schema.Validator
	options   ServerOptions
	logger    logging.Logger
	metrics   *metrics.Collector

	transport transport.Transport
	session   *state.SessionStateMachine

	// minLogLevel is set by logging/setLevel; retained per session.
	levelMu     sync.RWMutex
	minLogLevel mcptypes.LogLevel
}

// NewServer creates an MCP server dispatching onto rt.
func NewServer(rt *router.Router, validator *schema.Validator, opts ServerOptions, logger logging.Logger) (*Server, error) {
	if rt == nil {
		return nil, errors.New("server requires a router")
	}
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	if validator == nil {
		validator = schema.NewValidator(logger)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultServerOptions().RequestTimeout
	}

	session, err := state.NewSessionStateMachine(logger)
	if err != nil {
		return nil, errors.Wrap(err, "creating session state machine")
	}

	return &Server{
		router:      rt,
		validator:   validator,
		options:     opts,
		logger:      logger.WithField("component", "mcp_server"),
		metrics:     metrics.NewCollector(20),
		session:     session,
		minLogLevel: mcptypes.LogLevelInfo,
	}, nil
}

// Metrics returns a snapshot of the server's request statistics.
func (s *Server) Metrics() metrics.Snapshot {
	return s.metrics.CurrentSnapshot()
}

// Serve runs the message loop over t until the context is canceled, the
// client disconnects, or a terminal transport error occurs. A clean client
// disconnect returns nil.
func (s *Server) Serve(ctx context.Context, t transport.Transport) error {
	if t == nil {
		return errors.New("serve called with nil transport")
	}
	s.transport = t
	s.logger.Info("Server processing loop started.")

	defer func() {
		if err := s.session.MarkDisconnected(context.Background()); err != nil {
			s.logger.Warn("Failed to mark session disconnected.", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Context canceled, stopping server loop.")
			return ctx.Err()
		default:
		}

		if err := s.processNextMessage(ctx); err != nil {
			if terminal, clean := s.isTerminalError(err); terminal {
				if clean {
					s.logger.Info("Client disconnected, stopping server loop.")
					return nil
				}
				s.logger.Info("Terminal error received, stopping server loop.", "reason", err)
				return err
			}
			s.logger.Error("Non-terminal error processing message.", "error", fmt.Sprintf("%+v", err))
		}
	}
}

// processNextMessage reads, handles, and responds to a single message. It
// returns a non-nil error only for conditions the loop must act on;
// per-message failures are answered with JSON-RPC error responses.
func (s *Server) processNextMessage(ctx context.Context) error {
	msgBytes, readErr := s.transport.ReadMessage(ctx)
	if readErr != nil {
		// Framing-level rejections still get a JSON-RPC answer; everything
		// else is the loop's problem.
		var terr *transport.Error
		if errors.As(readErr, &terr) {
			switch terr.Code {
			case transport.ErrParseFailed:
				return s.handleProcessingError(ctx, nil, mcptypes.NewParseError(terr.Message))
			case transport.ErrInvalidMessage, transport.ErrMessageTooLarge:
				return s.handleProcessingError(ctx, nil, mcptypes.NewInvalidRequestError(terr.Message))
			}
		}
		return readErr
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.options.RequestTimeout)
	defer cancel()

	respBytes, handleErr := s.handleMessage(reqCtx, msgBytes)
	if handleErr != nil {
		return s.handleProcessingError(ctx, msgBytes, handleErr)
	}

	// Notifications produce no response bytes.
	if respBytes == nil {
		return nil
	}
	return s.writeResponse(ctx, respBytes)
}

// handleProcessingError converts a handler failure into a JSON-RPC error
// response addressed to the failing request. It returns an error only when
// the response cannot be written.
func (s *Server) handleProcessingError(ctx context.Context, msgBytes []byte, handleErr error) error {
	id := extractRequestID(msgBytes)
	rpcErr := toRPCError(handleErr)
	s.metrics.RecordError("mcp_server", rpcErr.Message)

	s.logger.Warn("Request failed.",
		"id", id.String(),
		"code", rpcErr.Code,
		"message", rpcErr.Message)

	respBytes, err := json.Marshal(mcptypes.NewErrorResponse(id, rpcErr))
	if err != nil {
		return errors.Wrap(err, "marshaling error response")
	}
	if err := s.writeResponse(ctx, respBytes); err != nil {
		return errors.Wrap(err, "failed to write error response after processing error")
	}
	return nil
}

// writeResponse writes one framed response to the transport.
func (s *Server) writeResponse(ctx context.Context, respBytes []byte) error {
	if err := s.transport.WriteMessage(ctx, respBytes); err != nil {
		return errors.Wrap(err, "writing response")
	}
	return nil
}

// isTerminalError reports whether err should stop the serve loop, and
// whether it represents a clean client disconnect.
func (s *Server) isTerminalError(err error) (terminal, clean bool) {
	if errors.Is(err, io.EOF) {
		return true, true
	}
	if transport.IsClosedError(err) {
		return true, true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true, false
	}
	return false, false
}

// extractRequestID pulls the request ID out of a raw message for error
// responses, best effort. Unparsable messages get a nil ID.
func extractRequestID(msgBytes []byte) mcptypes.RequestID {
	var probe struct {
		ID mcptypes.RequestID `json:"id"`
	}
	if err := json.Unmarshal(msgBytes, &probe); err != nil {
		return mcptypes.RequestID{}
	}
	return probe.ID
}

// SetMinLogLevel records the client-requested minimum log level.
func (s *Server) SetMinLogLevel(level mcptypes.LogLevel) {
	s.levelMu.Lock()
	defer s.levelMu.Unlock()
	s.minLogLevel = level
}

// MinLogLevel returns the client-requested minimum log level.
func (s *Server) MinLogLevel() mcptypes.LogLevel {
	s.levelMu.RLock()
	defer s.levelMu.RUnlock()
	return s.minLogLevel
}
