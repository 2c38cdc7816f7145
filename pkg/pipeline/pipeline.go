// Package pipeline provides the load → convert → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// A run has two stages:
//
//  1. Load: decode a machine document from a file or from inline bytes
//  2. Produce: generate each requested artifact (ETF, DOT, SVG, JSON)
//
// Artifacts are cached by the hash of the canonical machine document and the
// format, so a document converted twice is only rendered once.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "turnstile.yaml",
//	    Formats: []string{pipeline.FormatETF, pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	etfBytes := result.Artifacts[pipeline.FormatETF]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mealyetf/pkg/errors"
	"github.com/matzehuels/mealyetf/pkg/etf"
	mio "github.com/matzehuels/mealyetf/pkg/io"
)

// Format constants for output formats.
const (
	FormatETF     = "etf"      // complete ETF document
	FormatETFBody = "etf-body" // ETF without the state and edge declarations
	FormatDOT     = "dot"      // machine diagram source
	FormatLTSDOT  = "lts-dot"  // alternating system diagram source
	FormatSVG     = "svg"      // machine diagram
	FormatLTSSVG  = "lts-svg"  // alternating system diagram
	FormatJSON    = "json"     // canonical machine document
)

// DefaultFormat is produced when no format is requested.
const DefaultFormat = FormatETF

// ValidFormats lists the supported output formats in presentation order.
var ValidFormats = []string{
	FormatETF,
	FormatETFBody,
	FormatDOT,
	FormatLTSDOT,
	FormatSVG,
	FormatLTSSVG,
	FormatJSON,
}

// ContentTypes maps each format to its HTTP content type.
var ContentTypes = map[string]string{
	FormatETF:     "text/plain; charset=utf-8",
	FormatETFBody: "text/plain; charset=utf-8",
	FormatDOT:     "text/vnd.graphviz; charset=utf-8",
	FormatLTSDOT:  "text/vnd.graphviz; charset=utf-8",
	FormatSVG:     "image/svg+xml",
	FormatLTSSVG:  "image/svg+xml",
	FormatJSON:    "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Path is a machine document on disk. Exactly one of Path and Source
	// must be set.
	Path string `json:"path,omitempty"`

	// Source is an inline machine document in SourceFormat.
	Source       []byte     `json:"-"`
	SourceFormat mio.Format `json:"source_format,omitempty"`

	Formats []string `json:"formats,omitempty"`

	// Refresh ignores cached artifacts. Fresh results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// TTL overrides cache.TTLArtifact when positive.
	TTL time.Duration `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Machine is the decoded machine.
	Machine *mio.Machine

	// MachineHash is the hash of the canonical JSON document of Machine.
	MachineHash string

	// Artifacts contains outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	States      int
	Transitions int
	Complete    bool

	// Expansion is set when an ETF or alternating artifact was produced in
	// this run rather than read from the cache.
	Expansion *etf.Stats

	LoadTime    time.Duration
	ProduceTime time.Duration
}

// CacheInfo tracks cache hits per format.
type CacheInfo struct {
	Hits map[string]bool
}

// AllHit reports whether every artifact came from the cache.
func (c CacheInfo) AllHit() bool {
	if len(c.Hits) == 0 {
		return false
	}
	for _, hit := range c.Hits {
		if !hit {
			return false
		}
	}
	return true
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	switch {
	case o.Path == "" && o.Source == nil:
		return errors.New(errors.ErrCodeInvalidInput, "path or source is required")
	case o.Path != "" && o.Source != nil:
		return errors.New(errors.ErrCodeInvalidInput, "path and source are mutually exclusive")
	}
	if o.Source != nil && o.SourceFormat == "" {
		o.SourceFormat = mio.FormatJSON
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.Formats = dedupe(o.Formats)
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// sourceName names the machine in logs and hooks.
func (o *Options) sourceName() string {
	if o.Path != "" {
		return o.Path
	}
	return "inline:" + string(o.SourceFormat)
}

func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
