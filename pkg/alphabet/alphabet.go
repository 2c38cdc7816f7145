// Package alphabet provides an ordered, duplicate-free input alphabet.
//
// Symbol order is significant: the ETF writer numbers input letters by
// [Alphabet.SymbolIndex], so two alphabets with the same symbols in a
// different order produce different (but equally valid) output.
package alphabet

import (
	"errors"
	"fmt"
	"iter"
)

// ErrDuplicateSymbol is returned by [New] when a symbol occurs twice.
var ErrDuplicateSymbol = errors.New("duplicate symbol")

// Alphabet is an immutable, totally ordered set of symbols.
type Alphabet[I comparable] struct {
	symbols []I
	index   map[I]int
}

// New creates an alphabet from symbols in the given order.
func New[I comparable](symbols ...I) (*Alphabet[I], error) {
	a := &Alphabet[I]{
		symbols: make([]I, 0, len(symbols)),
		index:   make(map[I]int, len(symbols)),
	}
	for _, s := range symbols {
		if _, dup := a.index[s]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateSymbol, s)
		}
		a.index[s] = len(a.symbols)
		a.symbols = append(a.symbols, s)
	}
	return a, nil
}

// MustNew is like [New] but panics on error. Intended for tests and literals.
func MustNew[I comparable](symbols ...I) *Alphabet[I] {
	a, err := New(symbols...)
	if err != nil {
		panic(err)
	}
	return a
}

// Size returns the number of symbols.
func (a *Alphabet[I]) Size() int { return len(a.symbols) }

// Symbol returns the symbol at index i. It panics if i is out of range.
func (a *Alphabet[I]) Symbol(i int) I { return a.symbols[i] }

// SymbolIndex returns the position of sym, or false if sym is not a member.
func (a *Alphabet[I]) SymbolIndex(sym I) (int, bool) {
	i, ok := a.index[sym]
	return i, ok
}

// Contains reports whether sym is a member of the alphabet.
func (a *Alphabet[I]) Contains(sym I) bool {
	_, ok := a.index[sym]
	return ok
}

// Symbols returns a copy of the symbols in alphabet order.
func (a *Alphabet[I]) Symbols() []I {
	out := make([]I, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// All iterates over (index, symbol) pairs in alphabet order.
func (a *Alphabet[I]) All() iter.Seq2[int, I] {
	return func(yield func(int, I) bool) {
		for i, s := range a.symbols {
			if !yield(i, s) {
				return
			}
		}
	}
}
