package txn

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"gotx/config"
	"gotx/util"
)

// Reporter receives one human-readable diagnostic per failed
// transaction.  Reporting is a notification side effect only: it never
// changes what Execute returns.
type Reporter interface {
	Report(message string)
}

// LogReporter writes diagnostics to the logger and nothing else — the
// default variant.
type LogReporter struct {
	Logger *util.Logger
}

func (r *LogReporter) Report(message string) {
	r.Logger.Error("%s", message)
}

// AlertReporter logs the diagnostic and then blocks for operator
// acknowledgement, the interactive stand-in for a modal alert.  When
// stdin is not a terminal (pipes, CI) it degrades to log-only, so
// enabling alerts never hangs a script.
type AlertReporter struct {
	Logger *util.Logger

	// In and Out default to os.Stdin and os.Stderr.  Override in
	// tests for deterministic I/O.
	In  io.Reader
	Out io.Writer
}

func (r *AlertReporter) Report(message string) {
	r.Logger.Error("%s", message)

	in := r.In
	if in == nil {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return
		}
		in = os.Stdin
	}
	out := r.Out
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprintf(out, "ALERT: %s\npress Enter to continue ", message)
	bufio.NewReader(in).ReadString('\n') //nolint:errcheck
}

// NewReporter selects the reporter variant from configuration.
func NewReporter(cfg *config.Config, logger *util.Logger) Reporter {
	if cfg.Alert {
		return &AlertReporter{Logger: logger}
	}
	return &LogReporter{Logger: logger}
}
