package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mealyetf/pkg/alphabet"
	"github.com/matzehuels/mealyetf/pkg/errors"
	"github.com/matzehuels/mealyetf/pkg/mealy"
)

// Machine is a Mealy machine with string states and symbols, as described by
// a machine document.
type Machine = mealy.Table[string, string, string]

// MachineType is the only accepted value of a document's "type" field.
const MachineType = "mealy"

// Read decodes a machine document in the given format from r.
// Read does not close r.
func Read(r io.Reader, format Format) (*Machine, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	case FormatTOML:
		return ReadTOML(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown machine format %q", format)
}

// ReadJSON decodes a JSON machine document from r.
func ReadJSON(r io.Reader) (*Machine, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json")
	}
	return doc.build()
}

// ReadYAML decodes a YAML machine document from r.
func ReadYAML(r io.Reader) (*Machine, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
	}
	return doc.build()
}

// ReadTOML decodes a TOML machine document from r.
func ReadTOML(r io.Reader) (*Machine, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "decode toml: unknown fields %s", strings.Join(keys, ", "))
	}
	return doc.build()
}

// ReadBytes decodes data in the given format.
func ReadBytes(data []byte, format Format) (*Machine, error) {
	return Read(bytes.NewReader(data), format)
}

// Import reads the machine document at path. The format follows the file
// extension: .json, .yaml, .yml or .toml.
func Import(path string) (*Machine, error) {
	if err := errors.ValidateMachineFilename(filepath.Base(path)); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "machine file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	m, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (d *document) build() (*Machine, error) {
	if d.Type != "" && d.Type != MachineType {
		return nil, errors.New(errors.ErrCodeInvalidMachine, "unsupported machine type %q (want %q)", d.Type, MachineType)
	}
	if len(d.States) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidMachine, "machine has no states")
	}
	for _, s := range d.States {
		if err := errors.ValidateLabel(s); err != nil {
			return nil, fmt.Errorf("state: %w", err)
		}
	}
	for _, sym := range d.Alphabet {
		if err := errors.ValidateLabel(sym); err != nil {
			return nil, fmt.Errorf("input symbol: %w", err)
		}
	}

	inputs, err := alphabet.New(d.Alphabet...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMachine, err, "alphabet")
	}
	m := mealy.NewTable[string, string, string](inputs)
	for _, s := range d.States {
		if err := m.AddState(s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMachine, err, "states")
		}
	}
	if d.Initial != "" {
		if err := m.SetInitial(d.Initial); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMachine, err, "initial")
		}
	}
	for i, t := range d.Transitions {
		if err := errors.ValidateLabel(t.Output); err != nil {
			return nil, fmt.Errorf("transition %d output: %w", i, err)
		}
		if err := m.AddTransition(t.From, t.Input, t.Output, t.To); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMachine, err, "transition %d", i)
		}
	}
	return m, nil
}
