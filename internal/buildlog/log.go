package buildlog

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is the engine's run log: structured event logging via logrus, plus
// a three-color convention: dim for informational pre-command labels, red
// for failure details, plain for summaries.
type Logger struct {
	*logrus.Logger

	dim    *color.Color
	red    *color.Color
	out    io.Writer
	errOut io.Writer
}

// New builds a Logger writing structured fields to stderr and human output
// to stdout/stderr per the color convention.
func New() *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	l.SetOutput(os.Stderr)

	return &Logger{
		Logger: l,
		dim:    color.New(color.Faint),
		red:    color.New(color.FgRed),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// Info prints a dim, informational pre-command label.
func (l *Logger) Info(message string) {
	l.dim.Fprintln(l.out, message)
}

// Fail prints a red failure detail line.
func (l *Logger) Fail(message string) {
	l.red.Fprintln(l.errOut, message)
}

// Summary prints a plain summary line: "Targets are now up to date" or
// "FAILED: <message>".
func (l *Logger) Summary(message string) {
	io.WriteString(l.out, message+"\n")
}

// Stats logs end-of-run cache statistics via structured fields.
func (l *Logger) Stats(hits, total, removed int) {
	l.WithFields(logrus.Fields{
		"cache_hits":      hits,
		"total_tasks":     total,
		"entries_dropped": removed,
	}).Info("cache statistics")
}
