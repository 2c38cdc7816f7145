package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mealyetf/pkg/errors"
)

type document struct {
	Type        string       `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	States      []string     `json:"states" yaml:"states" toml:"states"`
	Alphabet    []string     `json:"alphabet" yaml:"alphabet" toml:"alphabet"`
	Initial     string       `json:"initial,omitempty" yaml:"initial,omitempty" toml:"initial,omitempty"`
	Transitions []transition `json:"transitions,omitempty" yaml:"transitions,omitempty" toml:"transitions,omitempty"`
}

type transition struct {
	From   string `json:"from" yaml:"from" toml:"from"`
	Input  string `json:"input" yaml:"input" toml:"input"`
	Output string `json:"output" yaml:"output" toml:"output"`
	To     string `json:"to" yaml:"to" toml:"to"`
}

func newDocument(m *Machine) document {
	doc := document{
		Type:     MachineType,
		States:   m.States(),
		Alphabet: m.Inputs().Symbols(),
	}
	if s, ok := m.InitialState(); ok {
		doc.Initial = s
	}
	for _, s := range doc.States {
		for _, in := range doc.Alphabet {
			if t, ok := m.Transition(s, in); ok {
				doc.Transitions = append(doc.Transitions, transition{From: s, Input: in, Output: t.Output, To: t.Successor})
			}
		}
	}
	return doc
}

// Write encodes m in the given format and writes it to w.
func Write(w io.Writer, m *Machine, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, m)
	case FormatYAML:
		return WriteYAML(w, m)
	case FormatTOML:
		return WriteTOML(w, m)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown machine format %q", format)
}

// WriteJSON encodes m as an indented JSON document.
// The output can be re-imported with [ReadJSON].
func WriteJSON(w io.Writer, m *Machine) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(m)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes m as a YAML document.
func WriteYAML(w io.Writer, m *Machine) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(m)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// WriteTOML encodes m as a TOML document.
func WriteTOML(w io.Writer, m *Machine) error {
	if err := toml.NewEncoder(w).Encode(newDocument(m)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Export writes m to a file at path in the format its extension selects.
func Export(m *Machine, path string) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(f, m, format)
}
