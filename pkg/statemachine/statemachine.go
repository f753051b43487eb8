package statemachine

import (
	"context"
	"sync"
)

// State is a named state in a finite state machine.
type State interface {
	Name() string
}

// Event is a named trigger for a transition.
type Event interface {
	Name() string
}

// Guard decides at runtime whether a transition may fire.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition is a state change triggered by an event, with optional guards.
type Transition struct {
	From   State
	To     State
	Event  Event
	Guards []Guard // all must pass
}

// StringState is a string-backed State for simple machines.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is a string-backed Event for simple machines.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

// Machine is a stateless transition table: the caller owns the current
// state (typically a persisted column) and asks the machine where an event
// leads from it. Lookups are O(1) on [fromState][event].
type Machine struct {
	mu          sync.RWMutex
	transitions map[string]map[string][]Transition
}

// New returns an empty machine.
func New() *Machine {
	return &Machine{transitions: make(map[string]map[string][]Transition)}
}

// AddTransition registers a transition. Multiple transitions for the same
// from/event pair are allowed; the first one whose guards pass wins, which
// enables guard-based branching with priority ordering.
func (m *Machine) AddTransition(from, to State, event Event, guards ...Guard) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fromName := from.Name()
	if _, ok := m.transitions[fromName]; !ok {
		m.transitions[fromName] = make(map[string][]Transition)
	}
	m.transitions[fromName][event.Name()] = append(m.transitions[fromName][event.Name()], Transition{
		From:   from,
		To:     to,
		Event:  event,
		Guards: guards,
	})
	return nil
}

// Fire resolves the next state for event from the given current state.
// Returns ErrNoTransitionAvailable when no transition is registered and
// ErrTransitionRejected when all candidates are blocked by guards.
func (m *Machine) Fire(ctx context.Context, current State, event Event, data any) (State, error) {
	if current == nil || event == nil {
		return nil, ErrInvalidEvent
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates, ok := m.transitions[current.Name()][event.Name()]
	if !ok || len(candidates) == 0 {
		return nil, newErrNoTransitionAvailable(current.Name(), event.Name())
	}

	for _, t := range candidates {
		if guardsPass(ctx, t, current, event, data) {
			return t.To, nil
		}
	}
	return nil, newErrTransitionRejected(current.Name(), event.Name())
}

// CanFire reports whether Fire would succeed for the given state and event.
func (m *Machine) CanFire(ctx context.Context, current State, event Event, data any) bool {
	if current == nil || event == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.transitions[current.Name()][event.Name()] {
		if guardsPass(ctx, t, current, event, data) {
			return true
		}
	}
	return false
}

func guardsPass(ctx context.Context, t Transition, from State, event Event, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
