// Package mealy defines Mealy machines: finite-state transducers whose
// transitions, taken on an input symbol, produce an output symbol and move to
// a successor state.
//
// # Overview
//
// [Machine] is the read-only view consumed by writers and renderers. Its
// transition function is partial: [Machine.Transition] reports ok == false for
// (state, input) pairs without a transition. [Table] is the map-backed
// implementation used by the file loaders and tests.
//
//	inputs := alphabet.MustNew("coin", "push")
//	m := mealy.NewTable[string, string, string](inputs)
//	_ = m.AddState("locked")
//	_ = m.AddState("open")
//	_ = m.SetInitial("locked")
//	_ = m.AddTransition("locked", "coin", "unlock", "open")
//	_ = m.AddTransition("open", "push", "lock", "locked")
//
// State order matters: [Machine.States] must return states in a stable order,
// since writers number states by that order.
package mealy

import (
	"errors"
	"fmt"

	"github.com/matzehuels/mealyetf/pkg/alphabet"
)

var (
	// ErrDuplicateState is returned by [Table.AddState] for a state that
	// already exists.
	ErrDuplicateState = errors.New("duplicate state")

	// ErrUnknownState is returned when a state is referenced before it was
	// added, and by [Validate] for successors outside the state set.
	ErrUnknownState = errors.New("unknown state")

	// ErrUnknownInput is returned by [Table.AddTransition] for inputs that
	// are not members of the machine's alphabet.
	ErrUnknownInput = errors.New("unknown input symbol")

	// ErrDuplicateTransition is returned by [Table.AddTransition] when the
	// (state, input) pair already has a transition. Machines are deterministic.
	ErrDuplicateTransition = errors.New("duplicate transition")

	// ErrNoInitialState is returned by [Validate] when the machine has no
	// initial state, or its initial state is not one of its states.
	ErrNoInitialState = errors.New("no initial state")
)

// Transition is the result of taking an input in a state.
type Transition[S, O any] struct {
	Output    O
	Successor S
}

// Machine is a deterministic Mealy machine with a partial transition function.
type Machine[S, I, O comparable] interface {
	// States returns all states in a stable order.
	States() []S
	// InitialState returns the initial state, or false if none is set.
	InitialState() (S, bool)
	// Transition returns the transition for (s, i), or false if undefined.
	Transition(s S, i I) (Transition[S, O], bool)
}

// Validate checks that m has an initial state among its states and that every
// defined transition leads to a declared state.
func Validate[S, I, O comparable](m Machine[S, I, O], inputs *alphabet.Alphabet[I]) error {
	states := m.States()
	known := make(map[S]struct{}, len(states))
	for _, s := range states {
		known[s] = struct{}{}
	}

	init, ok := m.InitialState()
	if !ok {
		return ErrNoInitialState
	}
	if _, ok := known[init]; !ok {
		return fmt.Errorf("%w: initial state %v is not declared", ErrNoInitialState, init)
	}

	for _, s := range states {
		for _, i := range inputs.All() {
			t, ok := m.Transition(s, i)
			if !ok {
				continue
			}
			if _, ok := known[t.Successor]; !ok {
				return fmt.Errorf("%w: %v --%v--> %v", ErrUnknownState, s, i, t.Successor)
			}
		}
	}
	return nil
}

// Complete reports whether m defines a transition for every (state, input).
func Complete[S, I, O comparable](m Machine[S, I, O], inputs *alphabet.Alphabet[I]) bool {
	for _, s := range m.States() {
		for _, i := range inputs.All() {
			if _, ok := m.Transition(s, i); !ok {
				return false
			}
		}
	}
	return true
}

// CountTransitions returns the number of defined transitions of m.
func CountTransitions[S, I, O comparable](m Machine[S, I, O], inputs *alphabet.Alphabet[I]) int {
	n := 0
	for _, s := range m.States() {
		for _, i := range inputs.All() {
			if _, ok := m.Transition(s, i); ok {
				n++
			}
		}
	}
	return n
}
