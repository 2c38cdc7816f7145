// Package etf writes Mealy machines in the ETF transition-system exchange
// format using alternating edge semantics.
//
// # Alternating Edges
//
// ETF edges carry labels. A Mealy transition carries two (input and output),
// so each transition
//
//	s --i/o--> t
//
// is split into two single-label edges joined by a synthetic intermediate node:
//
//	s --i--> (o,t) --o--> t
//
// Transitions that share the pair (o, t) share the intermediate node, and the
// node's output edge is written only once. Input and output symbols are merged
// into one label sort, "letter": inputs take ids 0..|I|-1 in alphabet order,
// outputs follow in the order they are first met while scanning states in
// machine order and inputs in alphabet order.
//
// Having alternating edge semantics may change the outcome of temporal
// formulae evaluated on the result.
//
// # Document Layout
//
// [WriteModel] writes a complete document:
//
//	begin state
//	id:id
//	end state
//	begin edge
//	letter:letter
//	end edge
//	begin init
//	0
//	end init
//	begin trans
//	2/1 1
//	0/2 0
//	1/2 0
//	end trans
//	begin sort id
//	"A"
//	"B"
//	"(1,B)"
//	end sort
//	begin sort letter
//	"x"
//	"1"
//	end sort
//
// [WriteBody] writes only the part starting at "begin init". Every edge line
// has the shape "from/to label". Numbering depends only on the iteration order
// of the machine's states and the alphabet, so output is byte-for-byte
// reproducible.
//
// # Errors
//
// Serialization fails with [ErrMissingInitialState] before anything is written
// when the initial state cannot be resolved, with [*UnknownStateError] when a
// transition leads outside the machine's state set, and with [*WriteError]
// when the destination rejects a write. Output written before a failure must
// be discarded.
//
// # Inspecting the Expansion
//
// [Expand] runs the same traversal without producing text and returns the
// alternating transition system as an [LTS] value, which the renderers use to
// draw it.
package etf
