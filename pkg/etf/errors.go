package etf

import (
	"errors"
	"fmt"
)

// ErrMissingInitialState is returned when the machine has no initial state,
// or its initial state is not one of its states. Nothing is written.
var ErrMissingInitialState = errors.New("etf: machine has no resolvable initial state")

// UnknownStateError reports a transition whose successor is not among the
// machine's states.
type UnknownStateError struct {
	State any
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("etf: successor state %v is not a state of the machine", e.State)
}

// WriteError wraps a failure of the destination writer.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "etf: write: " + e.Err.Error() }

// Unwrap returns the underlying I/O error.
func (e *WriteError) Unwrap() error { return e.Err }
