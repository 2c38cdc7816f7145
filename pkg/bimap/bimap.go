// Package bimap provides an append-only bidirectional index map that assigns
// dense, insertion-ordered integer identifiers to arbitrary keys.
//
// # Overview
//
// An [IndexMap] hands out identifiers lazily: the first call to
// [IndexMap.IDOf] for a key allocates the next free id, later calls return the
// same id. Identifiers start at a configurable offset and grow by one per new
// key, so the ids of a map with offset k and n keys are exactly k..k+n-1.
// Reverse lookup by id is O(1) via [IndexMap.KeyOf].
//
// The ETF writer uses three of these maps per serialization run: one for the
// machine's states (offset 0), one for intermediate nodes (offset numStates),
// and one for output letters (offset numInputs).
//
// # Usage
//
//	m := bimap.New[string](0)
//	m.IDOf("a") // 0
//	m.IDOf("b") // 1
//	m.IDOf("a") // 0
//	key, _ := m.KeyOf(1) // "b"
//
// # Concurrency
//
// IndexMap is not safe for concurrent use. A map is meant to be owned by a
// single serialization call and discarded afterwards.
package bimap

import "fmt"

// LookupError is returned by [IndexMap.KeyOf] when the id was never allocated.
type LookupError struct {
	ID     int // requested id
	Offset int // first id of the map
	Len    int // number of allocated ids
}

func (e *LookupError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("bimap: id %d not allocated (map is empty)", e.ID)
	}
	return fmt.Sprintf("bimap: id %d not allocated (valid range [%d, %d))", e.ID, e.Offset, e.Offset+e.Len)
}

// IndexMap maps keys to sequential integer ids and back.
//
// The zero value is a usable map with offset 0.
type IndexMap[K comparable] struct {
	offset int
	ids    map[K]int
	keys   []K // keys[id-offset] is the key for id
}

// New creates an empty map whose first allocated id is offset.
func New[K comparable](offset int) *IndexMap[K] {
	return &IndexMap[K]{
		offset: offset,
		ids:    make(map[K]int),
	}
}

// IDOf returns the id for key, allocating offset+Len() if key is new.
func (m *IndexMap[K]) IDOf(key K) int {
	if id, ok := m.ids[key]; ok {
		return id
	}
	if m.ids == nil {
		m.ids = make(map[K]int)
	}
	id := m.offset + len(m.keys)
	m.ids[key] = id
	m.keys = append(m.keys, key)
	return id
}

// Lookup returns the id for key without allocating.
func (m *IndexMap[K]) Lookup(key K) (int, bool) {
	id, ok := m.ids[key]
	return id, ok
}

// KeyOf returns the key that was allocated id.
// It returns a *LookupError if id is outside the allocated range.
func (m *IndexMap[K]) KeyOf(id int) (K, error) {
	i := id - m.offset
	if i < 0 || i >= len(m.keys) {
		var zero K
		return zero, &LookupError{ID: id, Offset: m.offset, Len: len(m.keys)}
	}
	return m.keys[i], nil
}

// Len returns the number of allocated ids.
func (m *IndexMap[K]) Len() int { return len(m.keys) }

// Offset returns the first id the map allocates.
func (m *IndexMap[K]) Offset() int { return m.offset }

// Keys returns all keys in id order. The returned slice is a copy.
func (m *IndexMap[K]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}
