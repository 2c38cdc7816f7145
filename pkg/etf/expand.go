package etf

import (
	"fmt"

	"github.com/matzehuels/mealyetf/pkg/alphabet"
	"github.com/matzehuels/mealyetf/pkg/bimap"
	"github.com/matzehuels/mealyetf/pkg/mealy"
)

// EdgeKind tells whether an alternating edge carries an input or an output.
type EdgeKind int

const (
	// EdgeInput goes from an original state to an intermediate node.
	EdgeInput EdgeKind = iota
	// EdgeOutput goes from an intermediate node to an original state.
	EdgeOutput
)

func (k EdgeKind) String() string {
	if k == EdgeOutput {
		return "output"
	}
	return "input"
}

// OutputEdge identifies an intermediate node: the output produced and the
// state reached afterwards.
type OutputEdge[S, O comparable] struct {
	Output    O
	Successor S
}

// String returns the node label "(output,successor)".
func (e OutputEdge[S, O]) String() string {
	return fmt.Sprintf("(%v,%v)", e.Output, e.Successor)
}

// edgeSink receives edges in emission order. A non-nil error stops the
// traversal.
type edgeSink interface {
	edge(from, to, label int, kind EdgeKind) error
}

// indexStates numbers the machine's states 0..n-1 in iteration order.
func indexStates[S comparable](states []S) *bimap.IndexMap[S] {
	ids := bimap.New[S](0)
	for _, s := range states {
		ids.IDOf(s)
	}
	return ids
}

// letterIndex numbers output symbols after the input alphabet, in discovery
// order.
type letterIndex[O comparable] struct {
	ids *bimap.IndexMap[O]
}

func newLetterIndex[O comparable](numInputs int) *letterIndex[O] {
	return &letterIndex[O]{ids: bimap.New[O](numInputs)}
}

func (l *letterIndex[O]) indexOf(out O) int { return l.ids.IDOf(out) }

// intermediates allocates one node per distinct (output, successor) pair and
// emits that node's output edge exactly once, when the node is allocated.
type intermediates[S, O comparable] struct {
	ids     *bimap.IndexMap[OutputEdge[S, O]]
	states  *bimap.IndexMap[S]
	letters *letterIndex[O]
	sink    edgeSink
}

func newIntermediates[S, O comparable](states *bimap.IndexMap[S], letters *letterIndex[O], sink edgeSink) *intermediates[S, O] {
	return &intermediates[S, O]{
		ids:     bimap.New[OutputEdge[S, O]](states.Len()),
		states:  states,
		letters: letters,
		sink:    sink,
	}
}

func (n *intermediates[S, O]) resolve(out O, succ S) (int, error) {
	succID, ok := n.states.Lookup(succ)
	if !ok {
		return 0, &UnknownStateError{State: succ}
	}

	key := OutputEdge[S, O]{Output: out, Successor: succ}
	if id, ok := n.ids.Lookup(key); ok {
		return id, nil
	}

	id := n.ids.IDOf(key)
	letter := n.letters.indexOf(out)
	// The output edge must precede any input edge that targets the node.
	if err := n.sink.edge(id, succID, letter, EdgeOutput); err != nil {
		return 0, err
	}
	return id, nil
}

// expander walks states x inputs once and feeds every alternating edge to
// its sink. All numbering derives from this walk.
type expander[S, I, O comparable] struct {
	machine mealy.Machine[S, I, O]
	inputs  *alphabet.Alphabet[I]

	states  *bimap.IndexMap[S]
	letters *letterIndex[O]
	nodes   *intermediates[S, O]
	out     edgeSink

	initial     int
	transitions int
	edges       int
}

func newExpander[S, I, O comparable](m mealy.Machine[S, I, O], inputs *alphabet.Alphabet[I], sink edgeSink) (*expander[S, I, O], error) {
	states := indexStates(m.States())

	init, ok := m.InitialState()
	if !ok {
		return nil, ErrMissingInitialState
	}
	initID, ok := states.Lookup(init)
	if !ok {
		return nil, ErrMissingInitialState
	}

	x := &expander[S, I, O]{
		machine: m,
		inputs:  inputs,
		states:  states,
		letters: newLetterIndex[O](inputs.Size()),
		out:     sink,
		initial: initID,
	}
	x.nodes = newIntermediates[S, O](states, x.letters, x)
	return x, nil
}

func (x *expander[S, I, O]) run() error {
	for sid, s := range x.states.Keys() {
		for label, i := range x.inputs.All() {
			t, ok := x.machine.Transition(s, i)
			if !ok {
				continue
			}
			mid, err := x.nodes.resolve(t.Output, t.Successor)
			if err != nil {
				return err
			}
			if err := x.edge(sid, mid, label, EdgeInput); err != nil {
				return err
			}
			x.transitions++
		}
	}
	return nil
}

// nodeLabel returns the display label of node id.
func (x *expander[S, I, O]) nodeLabel(id int) (string, error) {
	if id < x.states.Len() {
		s, err := x.states.KeyOf(id)
		if err != nil {
			return "", err
		}
		return fmt.Sprint(s), nil
	}
	key, err := x.nodes.ids.KeyOf(id)
	if err != nil {
		return "", fmt.Errorf("etf: intermediate node %d has no key: %w", id, err)
	}
	return key.String(), nil
}

// letterLabel returns the display label of letter id.
func (x *expander[S, I, O]) letterLabel(id int) (string, error) {
	if id < x.inputs.Size() {
		return fmt.Sprint(x.inputs.Symbol(id)), nil
	}
	out, err := x.letters.ids.KeyOf(id)
	if err != nil {
		return "", fmt.Errorf("etf: output letter %d has no symbol: %w", id, err)
	}
	return fmt.Sprint(out), nil
}

func (x *expander[S, I, O]) numNodes() int   { return x.states.Len() + x.nodes.ids.Len() }
func (x *expander[S, I, O]) numLetters() int { return x.inputs.Size() + x.letters.ids.Len() }

func (x *expander[S, I, O]) stats() Stats {
	return Stats{
		States:        x.states.Len(),
		Intermediates: x.nodes.ids.Len(),
		Inputs:        x.inputs.Size(),
		Outputs:       x.letters.ids.Len(),
		Transitions:   x.transitions,
		Edges:         x.edges,
	}
}

// edge forwards to the output sink and counts what it accepted.
func (x *expander[S, I, O]) edge(from, to, label int, kind EdgeKind) error {
	if err := x.out.edge(from, to, label, kind); err != nil {
		return err
	}
	x.edges++
	return nil
}

// Stats summarizes one alternating expansion.
type Stats struct {
	States        int `json:"states"`        // original states
	Intermediates int `json:"intermediates"` // distinct (output, successor) pairs
	Inputs        int `json:"inputs"`        // input letters
	Outputs       int `json:"outputs"`       // distinct outputs produced
	Transitions   int `json:"transitions"`   // defined Mealy transitions
	Edges         int `json:"edges"`         // Transitions + Intermediates
}
