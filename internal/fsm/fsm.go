// Package fsm provides a small generic finite state machine wrapper used to
// model the MCP session lifecycle. It is a thin builder layer over
// github.com/looplab/fsm that works with typed states and events.
package fsm

// file: internal/fsm/fsm.go

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	lfsm "github.com/looplab/fsm"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// State represents a state in the machine.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// Transition defines a transition rule: Event moves the machine from any
// of the From states to the To state.
type Transition struct {
	From  []State
	To    State
	Event Event
}

// FSM is the interface of the built state machine.
type FSM interface {
	// AddTransition stores a transition definition. Call Build after adding
	// all transitions.
	AddTransition(t Transition) FSM

	// Build finalizes the configuration and creates the underlying machine.
	Build() error

	// CurrentState returns the current state. Requires a successful Build.
	CurrentState() State

	// CanTransition reports whether the event is valid in the current state.
	CanTransition(event Event) bool

	// Transition attempts to trigger a state transition.
	Transition(ctx context.Context, event Event) error

	// Reset sets the machine back to its initial state.
	Reset() error
}

type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition

	mu       sync.RWMutex
	fsm      *lfsm.FSM
	buildErr error
}

// NewFSM creates a state machine builder with the given initial state. A
// nil logger falls back to the no-op logger.
func NewFSM(initialState State, logger logging.Logger) FSM {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &loopFSM{
		initialState: initialState,
		logger:       logger.WithField("component", "fsm"),
	}
}

// AddTransition stores a transition definition for Build.
func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm != nil {
		if l.buildErr == nil {
			l.buildErr = errors.New("cannot add transition after Build")
		}
		return l
	}
	if len(t.From) == 0 {
		if l.buildErr == nil {
			l.buildErr = errors.Newf("transition for event %q has no source states", t.Event)
		}
		return l
	}

	l.transitions = append(l.transitions, t)
	return l
}

// Build collapses the stored transitions into looplab event descriptors and
// instantiates the machine. Two transitions sharing an event must share a
// destination; looplab events have exactly one destination per event name.
func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm != nil || l.buildErr != nil {
		return l.buildErr
	}

	descByEvent := make(map[Event]*lfsm.EventDesc)
	order := make([]Event, 0, len(l.transitions))
	for _, t := range l.transitions {
		desc, ok := descByEvent[t.Event]
		if !ok {
			desc = &lfsm.EventDesc{Name: string(t.Event), Dst: string(t.To)}
			descByEvent[t.Event] = desc
			order = append(order, t.Event)
		} else if desc.Dst != string(t.To) {
			l.buildErr = errors.Newf("event %q has conflicting destinations %q and %q", t.Event, desc.Dst, t.To)
			return l.buildErr
		}
		for _, from := range t.From {
			desc.Src = appendUniqueState(desc.Src, string(from))
		}
	}

	events := make([]lfsm.EventDesc, 0, len(order))
	for _, ev := range order {
		events = append(events, *descByEvent[ev])
	}

	l.fsm = lfsm.NewFSM(string(l.initialState), events, lfsm.Callbacks{})
	l.logger.Debug("State machine built.", "initial", l.initialState, "events", len(events))
	return nil
}

// CurrentState returns the current state.
func (l *loopFSM) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return l.initialState
	}
	return State(l.fsm.Current())
}

// CanTransition reports whether the event is defined for the current state.
func (l *loopFSM) CanTransition(event Event) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return false
	}
	return l.fsm.Can(string(event))
}

// Transition attempts to trigger the event on the underlying machine.
func (l *loopFSM) Transition(ctx context.Context, event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm == nil {
		return errors.New("state machine not built")
	}

	if err := l.fsm.Event(ctx, string(event)); err != nil {
		return errors.Wrapf(err, "transition %q from state %q failed", event, l.fsm.Current())
	}
	return nil
}

// Reset puts the machine back in its initial state.
func (l *loopFSM) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm == nil {
		return errors.New("state machine not built")
	}
	l.fsm.SetState(string(l.initialState))
	return nil
}

func appendUniqueState(states []string, s string) []string {
	for _, existing := range states {
		if existing == s {
			return states
		}
	}
	return append(states, s)
}
