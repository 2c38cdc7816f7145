package etf

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mealyetf/pkg/alphabet"
	"github.com/matzehuels/mealyetf/pkg/mealy"
)

// Option configures a write.
type Option func(*options)

type options struct {
	logger *log.Logger
	stats  *Stats
}

// WithLogger logs a debug summary of each write to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStats stores the counts of a successful write in dst.
func WithStats(dst *Stats) Option {
	return func(o *options) { o.stats = dst }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WriteModel writes m as a complete ETF document with alternating edge
// semantics: the state and edge declarations followed by the sections of
// [WriteBody].
//
// Output is buffered and flushed before WriteModel returns, on success and on
// failure. w is not closed.
//
// States and outputs are used as map keys. When S or O is an interface type,
// every dynamic value must itself be comparable: a slice or map stored in an
// `any` output makes WriteModel panic.
func WriteModel[S, I, O comparable](w io.Writer, m mealy.Machine[S, I, O], inputs *alphabet.Alphabet[I], opts ...Option) error {
	return write(w, m, inputs, true, buildOptions(opts))
}

// WriteBody writes the init, trans, and sort sections of m without the
// document header.
func WriteBody[S, I, O comparable](w io.Writer, m mealy.Machine[S, I, O], inputs *alphabet.Alphabet[I], opts ...Option) error {
	return write(w, m, inputs, false, buildOptions(opts))
}

// ExportFile writes m as a complete ETF document to a file at path.
// The file is closed before ExportFile returns. On failure its content is
// incomplete and must not be used.
func ExportFile[S, I, O comparable](path string, m mealy.Machine[S, I, O], inputs *alphabet.Alphabet[I], opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &WriteError{Err: cerr}
		}
	}()
	return WriteModel(f, m, inputs, opts...)
}

func write[S, I, O comparable](w io.Writer, m mealy.Machine[S, I, O], inputs *alphabet.Alphabet[I], header bool, o options) (err error) {
	sw := &sectionWriter{w: bufio.NewWriter(w)}

	// Resolve the initial state before the first byte goes out.
	x, err := newExpander(m, inputs, sw)
	if err != nil {
		return err
	}

	defer func() {
		if ferr := sw.w.Flush(); ferr != nil && err == nil {
			err = &WriteError{Err: ferr}
		}
	}()

	if header {
		sw.declare("state", "id:id")
		sw.declare("edge", "letter:letter")
	}

	sw.begin("init")
	sw.printf("%d\n", x.initial)
	sw.end("init")

	sw.begin("trans")
	if err := x.run(); err != nil {
		return err
	}
	sw.end("trans")

	sw.begin("sort id")
	for id := range x.numNodes() {
		label, err := x.nodeLabel(id)
		if err != nil {
			return err
		}
		sw.quoted(label)
	}
	sw.end("sort")

	sw.begin("sort letter")
	for id := range x.numLetters() {
		label, err := x.letterLabel(id)
		if err != nil {
			return err
		}
		sw.quoted(label)
	}
	sw.end("sort")

	if sw.err != nil {
		return sw.err
	}

	st := x.stats()
	if o.stats != nil {
		*o.stats = st
	}
	if o.logger != nil {
		o.logger.Debug("wrote etf",
			"states", st.States,
			"intermediates", st.Intermediates,
			"letters", st.Inputs+st.Outputs,
			"edges", st.Edges)
	}
	return nil
}

// sectionWriter prints ETF sections. The first write error sticks and turns
// every later call into a no-op; edge reports it so traversal stops early.
type sectionWriter struct {
	w   *bufio.Writer
	err error
}

func (s *sectionWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.w, format, args...); err != nil {
		s.err = &WriteError{Err: err}
	}
}

func (s *sectionWriter) begin(name string) { s.printf("begin %s\n", name) }
func (s *sectionWriter) end(name string)   { s.printf("end %s\n", name) }

// quoted writes label verbatim between double quotes.
func (s *sectionWriter) quoted(label string) { s.printf("\"%s\"\n", label) }

// declare writes a one-line declaration section such as "begin state".
func (s *sectionWriter) declare(name, decl string) {
	s.begin(name)
	s.printf("%s\n", decl)
	s.end(name)
}

func (s *sectionWriter) edge(from, to, label int, _ EdgeKind) error {
	s.printf("%d/%d %d\n", from, to, label)
	return s.err
}
