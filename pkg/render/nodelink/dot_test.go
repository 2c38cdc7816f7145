package nodelink

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/mealyetf/pkg/alphabet"
	"github.com/matzehuels/mealyetf/pkg/etf"
	"github.com/matzehuels/mealyetf/pkg/mealy"
)

func turnstile(t *testing.T) *mealy.Table[string, string, string] {
	t.Helper()
	m := mealy.NewTable[string, string, string](alphabet.MustNew("coin", "push"))
	for _, s := range []string{"locked", "open"} {
		if err := m.AddState(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.SetInitial("locked"); err != nil {
		t.Fatal(err)
	}
	for _, tr := range [][4]string{
		{"locked", "coin", "unlock", "open"},
		{"open", "push", "lock", "locked"},
		{"open", "coin", "unlock", "open"},
	} {
		if err := m.AddTransition(tr[0], tr[1], tr[2], tr[3]); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func TestMachineDOT(t *testing.T) {
	m := turnstile(t)
	dot, err := MachineDOT[string, string, string](m, m.Inputs())
	if err != nil {
		t.Fatalf("MachineDOT: %v", err)
	}

	for _, want := range []string{
		`n0 [label="locked"];`,
		`n1 [label="open"];`,
		`__start -> n0;`,
		`n0 -> n1 [label="coin / unlock"];`,
		`n1 -> n0 [label="push / lock"];`,
		`n1 -> n1 [label="coin / unlock"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// alphabet order within a state
	if strings.Index(dot, `n1 -> n1`) > strings.Index(dot, `n1 -> n0`) {
		t.Error("transitions of a state not in alphabet order")
	}
}

func TestMachineDOTWithoutInitial(t *testing.T) {
	m := mealy.NewTable[string, string, string](alphabet.MustNew("x"))
	if err := m.AddState("a"); err != nil {
		t.Fatal(err)
	}
	dot, err := MachineDOT[string, string, string](m, m.Inputs())
	if err != nil {
		t.Fatalf("MachineDOT: %v", err)
	}
	if strings.Contains(dot, startNode) {
		t.Errorf("DOT has a start node without an initial state:\n%s", dot)
	}
}

type dangling struct{}

func (dangling) States() []string { return []string{"a"} }

func (dangling) InitialState() (string, bool) { return "a", true }

func (dangling) Transition(s, i string) (mealy.Transition[string, string], bool) {
	return mealy.Transition[string, string]{Output: "o", Successor: "ghost"}, true
}

func TestMachineDOTUnknownSuccessor(t *testing.T) {
	_, err := MachineDOT[string, string, string](dangling{}, alphabet.MustNew("x"))
	if !errors.Is(err, mealy.ErrUnknownState) {
		t.Errorf("MachineDOT error = %v, want %v", err, mealy.ErrUnknownState)
	}
}

func TestAlternatingDOT(t *testing.T) {
	m := turnstile(t)
	lts, err := etf.Expand[string, string, string](m, m.Inputs())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	dot := AlternatingDOT(lts)

	// locked=0 open=1 (unlock,open)=2 (lock,locked)=3
	// letters: coin=0 push=1 unlock=2 lock=3
	for _, want := range []string{
		`n0 [label="locked"];`,
		`n2 [label="", tooltip="(unlock,open)", width=0.2, style="dashed"];`,
		`n3 [label="", tooltip="(lock,locked)", width=0.2, style="dashed"];`,
		`n2 -> n1 [label="unlock", style=dashed];`,
		`n0 -> n2 [label="coin"];`,
		`n1 -> n2 [label="coin"];`,
		`n3 -> n0 [label="lock", style=dashed];`,
		`n1 -> n3 [label="push"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	if got := strings.Count(dot, "->"); got != len(lts.Edges)+1 {
		t.Errorf("edge count = %d, want %d", got, len(lts.Edges)+1)
	}
}

func TestRenderSVG(t *testing.T) {
	m := turnstile(t)
	dot, err := MachineDOT[string, string, string](m, m.Inputs())
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("RenderSVG output is not SVG: %.80s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}
