// Package state models the MCP session lifecycle: a connection starts
// uninitialized, moves through the initialize handshake, and ends shut
// down. The router itself places no ordering precondition on its
// operations; enforcing the handshake sequence is the server/transport
// layer's job, and this machine is how it does so.
package state

// file: internal/mcp/state/machine.go

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/alexchoi0/swissknife-mcp/internal/fsm"
	"github.com/alexchoi0/swissknife-mcp/internal/logging"
	"github.com/alexchoi0/swissknife-mcp/internal/mcp/mcperrors"
)

// Session states.
const (
	StateUninitialized fsm.State = "uninitialized" // Connection established, no handshake yet.
	StateInitializing  fsm.State = "initializing"  // initialize received, awaiting initialized notification.
	StateInitialized   fsm.State = "initialized"   // Handshake complete, general requests allowed.
	StateShutdown      fsm.State = "shutdown"      // Terminal.
)

// Session events.
const (
	EventInitializeRequest fsm.Event = "initialize_request"
	EventClientInitialized fsm.Event = "client_initialized"
	EventDisconnect        fsm.Event = "disconnect"
)

// IsTerminal reports whether no further transitions can occur from s.
func IsTerminal(s fsm.State) bool {
	return s == StateShutdown
}

// SessionStateMachine tracks one connection's position in the MCP lifecycle.
type SessionStateMachine struct {
	fsm.FSM
	logger logging.Logger
}

// NewSessionStateMachine creates and builds a session lifecycle machine.
func NewSessionStateMachine(logger logging.Logger) (*SessionStateMachine, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "session_state")

	builder := fsm.NewFSM(StateUninitialized, log).
		AddTransition(fsm.Transition{
			From:  []fsm.State{StateUninitialized},
			Event: EventInitializeRequest,
			To:    StateInitializing,
		}).
		AddTransition(fsm.Transition{
			From:  []fsm.State{StateInitializing},
			Event: EventClientInitialized,
			To:    StateInitialized,
		}).
		AddTransition(fsm.Transition{
			From:  []fsm.State{StateUninitialized, StateInitializing, StateInitialized},
			Event: EventDisconnect,
			To:    StateShutdown,
		})

	if err := builder.Build(); err != nil {
		return nil, errors.Wrap(err, "building session state machine")
	}

	return &SessionStateMachine{FSM: builder, logger: log}, nil
}

// ValidateMethod checks whether the given protocol method is permitted in
// the current session state. ping is a liveness check and is always
// allowed; initialize is only valid before the handshake; everything else
// requires a completed handshake.
func (m *SessionStateMachine) ValidateMethod(method string) error {
	current := m.CurrentState()

	switch method {
	case "ping":
		return nil
	case "initialize":
		if current != StateUninitialized {
			return mcperrors.NewRequestSequenceError(
				"initialize received on an already-initialized session",
				map[string]any{"state": string(current)},
			)
		}
		return nil
	case "notifications/initialized":
		if current != StateInitializing {
			return mcperrors.NewRequestSequenceError(
				"initialized notification received outside the handshake",
				map[string]any{"state": string(current)},
			)
		}
		return nil
	default:
		if current != StateInitialized {
			return mcperrors.NewRequestSequenceError(
				"method not allowed before the initialize handshake completes",
				map[string]any{"state": string(current), "method": method},
			)
		}
		return nil
	}
}

// MarkInitializeReceived records the initialize request.
func (m *SessionStateMachine) MarkInitializeReceived(ctx context.Context) error {
	return m.Transition(ctx, EventInitializeRequest)
}

// MarkClientInitialized records the initialized notification.
func (m *SessionStateMachine) MarkClientInitialized(ctx context.Context) error {
	return m.Transition(ctx, EventClientInitialized)
}

// MarkDisconnected records the end of the session.
func (m *SessionStateMachine) MarkDisconnected(ctx context.Context) error {
	if IsTerminal(m.CurrentState()) {
		return nil
	}
	return m.Transition(ctx, EventDisconnect)
}
