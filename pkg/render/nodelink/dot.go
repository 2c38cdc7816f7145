package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mealyetf/pkg/alphabet"
	"github.com/matzehuels/mealyetf/pkg/etf"
	"github.com/matzehuels/mealyetf/pkg/mealy"
)

const startNode = "__start"

func writeHeader(buf *bytes.Buffer) {
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	buf.WriteString("\n")
}

func writeStart(buf *bytes.Buffer, initial int) {
	fmt.Fprintf(buf, "  %s [shape=point, label=\"\"];\n", startNode)
	fmt.Fprintf(buf, "  %s -> n%d;\n", startNode, initial)
}

// MachineDOT converts m to Graphviz DOT with one node per state.
// Transitions are visited in state order, then in alphabet order.
//
// It fails if a transition leads to a state that m does not list.
func MachineDOT[S, I, O comparable](m mealy.Machine[S, I, O], inputs *alphabet.Alphabet[I]) (string, error) {
	states := m.States()
	index := make(map[S]int, len(states))
	for i, s := range states {
		index[s] = i
	}

	var buf bytes.Buffer
	writeHeader(&buf)

	for i, s := range states {
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", i, fmt.Sprint(s))
	}
	if s, ok := m.InitialState(); ok {
		if id, ok := index[s]; ok {
			writeStart(&buf, id)
		}
	}

	buf.WriteString("\n")
	for i, s := range states {
		for _, in := range inputs.All() {
			t, ok := m.Transition(s, in)
			if !ok {
				continue
			}
			to, ok := index[t.Successor]
			if !ok {
				return "", fmt.Errorf("%w: %v", mealy.ErrUnknownState, t.Successor)
			}
			fmt.Fprintf(&buf, "  n%d -> n%d [label=%q];\n", i, to, fmt.Sprintf("%v / %v", in, t.Output))
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// AlternatingDOT converts an alternating transition system to Graphviz DOT.
// Node and letter ids match the ETF numbering of l.
func AlternatingDOT(l *etf.LTS) string {
	var buf bytes.Buffer
	writeHeader(&buf)

	for id, label := range l.NodeLabels {
		if l.IsIntermediate(id) {
			fmt.Fprintf(&buf, "  n%d [label=\"\", tooltip=%q, width=0.2, style=\"dashed\"];\n", id, label)
			continue
		}
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", id, label)
	}
	writeStart(&buf, l.Initial)

	buf.WriteString("\n")
	for _, e := range l.Edges {
		attrs := fmt.Sprintf("label=%q", l.LetterLabels[e.Label])
		if e.Kind == etf.EdgeOutput {
			attrs += ", style=dashed"
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.From, e.To, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one whose
// width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
