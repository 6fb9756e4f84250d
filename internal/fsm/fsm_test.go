// Package fsm tests the generic state machine wrapper.
package fsm

// file: internal/fsm/fsm_test.go

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stateIdle    State = "idle"
	stateRunning State = "running"
	stateDone    State = "done"

	eventStart  Event = "start"
	eventFinish Event = "finish"
)

func buildTestFSM(t *testing.T) FSM {
	t.Helper()
	m := NewFSM(stateIdle, nil).
		AddTransition(Transition{From: []State{stateIdle}, Event: eventStart, To: stateRunning}).
		AddTransition(Transition{From: []State{stateRunning}, Event: eventFinish, To: stateDone})
	require.NoError(t, m.Build(), "Building a valid machine should succeed.")
	return m
}

// TestFSM_Build_StartsInInitialState verifies construction.
func TestFSM_Build_StartsInInitialState(t *testing.T) {
	m := buildTestFSM(t)
	assert.Equal(t, stateIdle, m.CurrentState())
}

// TestFSM_Transition_FollowsDefinedPath walks the happy path.
func TestFSM_Transition_FollowsDefinedPath(t *testing.T) {
	m := buildTestFSM(t)
	ctx := context.Background()

	require.NoError(t, m.Transition(ctx, eventStart))
	assert.Equal(t, stateRunning, m.CurrentState())

	require.NoError(t, m.Transition(ctx, eventFinish))
	assert.Equal(t, stateDone, m.CurrentState())
}

// TestFSM_Transition_RejectsUndefinedEvent verifies invalid events fail
// without changing state.
func TestFSM_Transition_RejectsUndefinedEvent(t *testing.T) {
	m := buildTestFSM(t)

	err := m.Transition(context.Background(), eventFinish)
	require.Error(t, err, "finish is not valid from idle.")
	assert.Equal(t, stateIdle, m.CurrentState(), "Failed transition must not change state.")
}

// TestFSM_CanTransition_ReflectsCurrentState checks the query method.
func TestFSM_CanTransition_ReflectsCurrentState(t *testing.T) {
	m := buildTestFSM(t)
	assert.True(t, m.CanTransition(eventStart))
	assert.False(t, m.CanTransition(eventFinish))

	require.NoError(t, m.Transition(context.Background(), eventStart))
	assert.False(t, m.CanTransition(eventStart))
	assert.True(t, m.CanTransition(eventFinish))
}

// TestFSM_Reset_ReturnsToInitialState verifies reset.
func TestFSM_Reset_ReturnsToInitialState(t *testing.T) {
	m := buildTestFSM(t)
	require.NoError(t, m.Transition(context.Background(), eventStart))
	require.NoError(t, m.Reset())
	assert.Equal(t, stateIdle, m.CurrentState())
}

// TestFSM_Build_RejectsConflictingDestinations verifies configuration checks.
func TestFSM_Build_RejectsConflictingDestinations(t *testing.T) {
	m := NewFSM(stateIdle, nil).
		AddTransition(Transition{From: []State{stateIdle}, Event: eventStart, To: stateRunning}).
		AddTransition(Transition{From: []State{stateDone}, Event: eventStart, To: stateDone})
	assert.Error(t, m.Build(), "One event with two destinations must be rejected.")
}

// TestFSM_Build_RejectsTransitionWithoutSources verifies configuration checks.
func TestFSM_Build_RejectsTransitionWithoutSources(t *testing.T) {
	m := NewFSM(stateIdle, nil).
		AddTransition(Transition{Event: eventStart, To: stateRunning})
	assert.Error(t, m.Build())
}
