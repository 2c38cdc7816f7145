package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxLabelLength bounds state and symbol names read from machine files.
const maxLabelLength = 256

// ValidateLabel validates a state or symbol name for use in ETF output.
//
// ETF sort sections print labels verbatim between double quotes, one per
// line, so a label must not break that framing:
//   - No empty labels
//   - No double quotes
//   - No control characters (including newlines)
//   - Maximum length of 256 characters
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}

	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidLabel, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label %q contains control characters", label)
		}
	}

	if strings.Contains(label, `"`) {
		return New(ErrCodeInvalidLabel, "label %q contains a double quote", label)
	}

	return nil
}

// machineExtensions lists the file extensions machine documents may use.
var machineExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
}

// ValidateMachineFilename validates the name of a machine document.
// It must be a non-empty base name with a supported extension.
func ValidateMachineFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "machine filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "machine filename cannot contain path separators")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !machineExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported machine file extension %q (want .json, .yaml, .yml or .toml)", ext)
	}

	return nil
}

// ValidatePath validates an output path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
