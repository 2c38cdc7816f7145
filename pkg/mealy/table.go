package mealy

import (
	"fmt"

	"github.com/matzehuels/mealyetf/pkg/alphabet"
)

type stateInput[S, I comparable] struct {
	state S
	input I
}

// Table is a map-backed [Machine] that keeps states in insertion order.
//
// The zero value is not usable - use [NewTable].
// Table is not safe for concurrent modification.
type Table[S, I, O comparable] struct {
	inputs     *alphabet.Alphabet[I]
	states     []S
	known      map[S]struct{}
	initial    S
	hasInitial bool
	trans      map[stateInput[S, I]]Transition[S, O]
}

// NewTable creates an empty machine over inputs.
func NewTable[S, I, O comparable](inputs *alphabet.Alphabet[I]) *Table[S, I, O] {
	return &Table[S, I, O]{
		inputs: inputs,
		known:  make(map[S]struct{}),
		trans:  make(map[stateInput[S, I]]Transition[S, O]),
	}
}

// Inputs returns the machine's input alphabet.
func (m *Table[S, I, O]) Inputs() *alphabet.Alphabet[I] { return m.inputs }

// AddState appends s to the state list.
func (m *Table[S, I, O]) AddState(s S) error {
	if _, ok := m.known[s]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateState, s)
	}
	m.known[s] = struct{}{}
	m.states = append(m.states, s)
	return nil
}

// SetInitial marks s as the initial state. s must already be added.
func (m *Table[S, I, O]) SetInitial(s S) error {
	if _, ok := m.known[s]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownState, s)
	}
	m.initial = s
	m.hasInitial = true
	return nil
}

// AddTransition defines from --in/out--> to. Both states must already exist
// and in must be a member of the alphabet.
func (m *Table[S, I, O]) AddTransition(from S, in I, out O, to S) error {
	if _, ok := m.known[from]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownState, from)
	}
	if _, ok := m.known[to]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownState, to)
	}
	if !m.inputs.Contains(in) {
		return fmt.Errorf("%w: %v", ErrUnknownInput, in)
	}
	key := stateInput[S, I]{from, in}
	if _, ok := m.trans[key]; ok {
		return fmt.Errorf("%w: (%v, %v)", ErrDuplicateTransition, from, in)
	}
	m.trans[key] = Transition[S, O]{Output: out, Successor: to}
	return nil
}

// States returns the states in insertion order. The slice is a copy.
func (m *Table[S, I, O]) States() []S {
	out := make([]S, len(m.states))
	copy(out, m.states)
	return out
}

// InitialState implements [Machine].
func (m *Table[S, I, O]) InitialState() (S, bool) {
	return m.initial, m.hasInitial
}

// Transition implements [Machine].
func (m *Table[S, I, O]) Transition(s S, i I) (Transition[S, O], bool) {
	t, ok := m.trans[stateInput[S, I]{s, i}]
	return t, ok
}

// NumStates returns the number of states.
func (m *Table[S, I, O]) NumStates() int { return len(m.states) }

// NumTransitions returns the number of defined transitions.
func (m *Table[S, I, O]) NumTransitions() int { return len(m.trans) }

var _ Machine[string, string, string] = (*Table[string, string, string])(nil)
