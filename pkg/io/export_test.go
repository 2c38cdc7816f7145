package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	orig, err := ReadJSON(strings.NewReader(turnstileJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	want := toETF(t, orig)

	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, orig, format); err != nil {
				t.Fatalf("Write: %v", err)
			}
			back, err := Read(&buf, format)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got := toETF(t, back); got != want {
				t.Errorf("round trip changed ETF:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}

func TestWriteJSONDeterministic(t *testing.T) {
	m, err := ReadYAML(strings.NewReader(turnstileYAML))
	if err != nil {
		t.Fatalf("ReadYAML: %v", err)
	}
	var a, b bytes.Buffer
	if err := WriteJSON(&a, m); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(&b, m); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("WriteJSON output differs between calls")
	}
	if !strings.Contains(a.String(), `"type": "mealy"`) {
		t.Errorf("WriteJSON output missing type field:\n%s", a.String())
	}
}

func TestExport(t *testing.T) {
	m, err := ReadJSON(strings.NewReader(turnstileJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.yaml", "out.toml"} {
		path := filepath.Join(dir, name)
		if err := Export(m, path); err != nil {
			t.Fatalf("Export(%s): %v", name, err)
		}
		back, err := Import(path)
		if err != nil {
			t.Fatalf("Import(%s): %v", name, err)
		}
		if back.NumTransitions() != m.NumTransitions() {
			t.Errorf("%s: transitions = %d, want %d", name, back.NumTransitions(), m.NumTransitions())
		}
	}

	if err := Export(m, filepath.Join(dir, "out.txt")); err == nil {
		t.Error("Export(out.txt) succeeded, want error")
	}
}
