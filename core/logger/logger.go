package logger

import "io"

// Logger is just a wrapper that prints diagnostics to STDERR, with optional
// color.
type Logger struct {
	Stderr  io.Writer
	Verbose bool
	Color   bool
}

// Errf prints a diagnostic line to STDERR.
func (l *Logger) Errf(c Color, s string, args ...interface{}) {
	l.FErrf(l.Stderr, c, s, args...)
}

// FErrf prints a diagnostic line to the given writer.
func (l *Logger) FErrf(w io.Writer, c Color, s string, args ...interface{}) {
	if len(args) == 0 {
		s, args = "%s", []interface{}{s}
	}
	if !l.Color {
		c = Default
	}
	print := c()
	print(w, s+"\n", args...)
}

// VerboseErrf prints a trace line to STDERR if verbose mode is enabled.
func (l *Logger) VerboseErrf(c Color, s string, args ...interface{}) {
	if l.Verbose {
		l.Errf(c, s, args...)
	}
}
