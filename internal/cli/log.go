// Package cli implements the mealyetf command-line interface.
//
// The CLI converts Mealy machine documents (JSON, YAML or TOML) into ETF
// with alternating edges, renders machines and their alternating expansion
// with Graphviz, inspects machines, and serves the same pipeline over HTTP.
// It is built on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - convert: write the ETF document (or body) of a machine
//   - render: draw the machine or its alternating expansion as DOT or SVG
//   - inspect: print counts and completeness of a machine
//   - serve: run the HTTP API
//   - cache: manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so that library code can log per call.
//
// # Configuration
//
// Cache backend and server address come from an optional TOML file, see
// [Config].
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat prints wall clock time with centiseconds, e.g. 14:32:01.45.
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
	})
	setLevel(l, level)
	return l
}

// setLevel changes the level of l. Debug output also names the calling
// source line.
func setLevel(l *log.Logger, level log.Level) {
	l.SetLevel(level)
	l.SetReportCaller(level <= log.DebugLevel)
}

// commandLogger prefixes l with the name of the running subcommand.
func commandLogger(l *log.Logger, name string) *log.Logger {
	if name == "" || name == appName {
		return l
	}
	return l.WithPrefix(name)
}

// timer logs one step of a command together with its elapsed time.
type timer struct {
	logger *log.Logger
	step   string
	start  time.Time
}

func startTimer(l *log.Logger, step string) *timer {
	return &timer{logger: l, step: step, start: time.Now()}
}

// done logs the step at info level with keyvals and an "elapsed" field
// rounded to the millisecond.
func (t *timer) done(keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(t.start).Round(time.Millisecond))
	t.logger.Info(t.step, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger stored by withLogger, or log.Default.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
