// Package io reads and writes Mealy machine documents.
//
// # Overview
//
// A machine document names its states, its input alphabet, its initial state
// and its transitions. The same fields are accepted in JSON, YAML and TOML:
//
//	{
//	  "type": "mealy",
//	  "states": ["locked", "open"],
//	  "alphabet": ["coin", "push"],
//	  "initial": "locked",
//	  "transitions": [
//	    {"from": "locked", "input": "coin", "output": "unlock", "to": "open"},
//	    {"from": "open", "input": "push", "output": "lock", "to": "locked"}
//	  ]
//	}
//
// The equivalent TOML uses an array of tables:
//
//	type = "mealy"
//	states = ["locked", "open"]
//	alphabet = ["coin", "push"]
//	initial = "locked"
//
//	[[transitions]]
//	from = "locked"
//	input = "coin"
//	output = "unlock"
//	to = "open"
//
// # Fields
//
// Required:
//   - states: State names, in the order writers number them
//   - alphabet: Input symbols, in the order writers traverse them
//
// Optional:
//   - type: Must be "mealy" when present
//   - initial: Initial state (writing ETF fails without one)
//   - transitions: The partial transition function
//
// Output symbols are collected from the transitions. Every name must be a
// valid label (see [errors.ValidateLabel]) because ETF prints labels without
// escaping. Unknown fields are rejected in all three formats.
//
// # Import
//
// Use [Import] to read a document from a file path (the extension selects the
// format), or [Read] and the format-specific readers for any io.Reader:
//
//	m, err := io.Import("turnstile.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Errors carry codes from [errors]: ErrCodeInvalidInput for documents that do
// not decode, ErrCodeInvalidMachine for documents that decode but do not
// describe a machine, ErrCodeFileNotFound for missing files.
//
// # Export
//
// [Write] and [Export] produce documents that [Read] and [Import] accept.
// Transitions are written in state order, then alphabet order, so exporting
// the same machine twice yields identical bytes.
//
// [errors]: github.com/matzehuels/mealyetf/pkg/errors
// [errors.ValidateLabel]: github.com/matzehuels/mealyetf/pkg/errors.ValidateLabel
package io
