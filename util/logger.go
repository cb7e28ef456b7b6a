// Package util provides small helpers shared across gotx: the levelled
// logger, numeric address parsing, and the receive-buffer pool.
package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel controls how chatty a Logger is.  Error lines bypass the
// gate entirely: a failed transaction is always worth one line.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// Logger writes tagged lines to a single writer, serialised by a
// mutex so concurrent transactions never interleave output.
type Logger struct {
	verbosity  LogLevel
	out        io.Writer
	mu         sync.Mutex
	timestamps bool
}

// NewLogger returns a Logger gated at the given verbosity, counting
// -v occurrences (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
// Debug verbosity turns timestamps on, since per-phase timing is
// usually what -vvv is after.
func NewLogger(verbosity int) *Logger {
	return &Logger{
		verbosity:  LogLevel(verbosity),
		out:        os.Stderr,
		timestamps: verbosity >= int(LogDebug),
	}
}

// SetTimestamps toggles the wall-clock prefix.
func (l *Logger) SetTimestamps(on bool) { l.timestamps = on }

// SetOutput redirects output away from os.Stderr, used by tests.
func (l *Logger) SetOutput(w io.Writer) { l.out = w }

// Level returns the configured verbosity.
func (l *Logger) Level() LogLevel { return l.verbosity }

// Error always prints, tagged [ERR].
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LogQuiet, "ERR", format, args...)
}

// Warn prints at normal verbosity and above, tagged [WRN].
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LogNormal, "WRN", format, args...)
}

// Info prints at normal verbosity and above, tagged [INF].
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LogNormal, "INF", format, args...)
}

// Verbose prints per-transaction detail, tagged [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) {
	l.emit(LogVerbose, "VRB", format, args...)
}

// Debug prints phase-level detail, tagged [DBG].
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LogDebug, "DBG", format, args...)
}

func (l *Logger) emit(min LogLevel, tag, format string, args ...interface{}) {
	if l.verbosity < min {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := "[" + tag + "] " + fmt.Sprintf(format, args...)
	if l.timestamps {
		line = time.Now().Format("15:04:05.000") + " " + line
	}
	fmt.Fprintln(l.out, line)
}
