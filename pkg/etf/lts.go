package etf

import (
	"github.com/matzehuels/mealyetf/pkg/alphabet"
	"github.com/matzehuels/mealyetf/pkg/mealy"
)

// Edge is one single-label edge of the alternating transition system.
type Edge struct {
	From  int      `json:"from"`
	To    int      `json:"to"`
	Label int      `json:"label"`
	Kind  EdgeKind `json:"kind"`
}

// LTS is the alternating transition system of a Mealy machine, numbered
// exactly as [WriteModel] numbers it.
type LTS struct {
	Initial      int      `json:"initial"`
	NumStates    int      `json:"num_states"` // ids below NumStates are original states
	NumInputs    int      `json:"num_inputs"` // letters below NumInputs are inputs
	Edges        []Edge   `json:"edges"`      // emission order
	NodeLabels   []string `json:"node_labels"`
	LetterLabels []string `json:"letter_labels"`

	stats Stats
}

// Stats returns the counts of the expansion.
func (l *LTS) Stats() Stats { return l.stats }

// IsIntermediate reports whether node id was introduced by the expansion.
func (l *LTS) IsIntermediate(id int) bool { return id >= l.NumStates }

type collector struct {
	edges []Edge
}

func (c *collector) edge(from, to, label int, kind EdgeKind) error {
	c.edges = append(c.edges, Edge{From: from, To: to, Label: label, Kind: kind})
	return nil
}

// Expand computes the alternating transition system of m without writing it.
// The comparability requirement of [WriteModel] applies.
func Expand[S, I, O comparable](m mealy.Machine[S, I, O], inputs *alphabet.Alphabet[I]) (*LTS, error) {
	c := &collector{}
	x, err := newExpander(m, inputs, c)
	if err != nil {
		return nil, err
	}
	if err := x.run(); err != nil {
		return nil, err
	}

	l := &LTS{
		Initial:      x.initial,
		NumStates:    x.states.Len(),
		NumInputs:    inputs.Size(),
		Edges:        c.edges,
		NodeLabels:   make([]string, x.numNodes()),
		LetterLabels: make([]string, x.numLetters()),
		stats:        x.stats(),
	}
	for id := range l.NodeLabels {
		if l.NodeLabels[id], err = x.nodeLabel(id); err != nil {
			return nil, err
		}
	}
	for id := range l.LetterLabels {
		if l.LetterLabels[id], err = x.letterLabel(id); err != nil {
			return nil, err
		}
	}
	return l, nil
}
