package txn

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gotx/config"
	"gotx/util"
)

func TestLogReporter(t *testing.T) {
	var out bytes.Buffer
	logger := util.NewLogger(0)
	logger.SetOutput(&out)

	rep := &LogReporter{Logger: logger}
	rep.Report("input: port=0: out of range 1-65535")

	got := out.String()
	if !strings.Contains(got, "[ERR]") {
		t.Errorf("output %q missing error level", got)
	}
	if !strings.Contains(got, "out of range") {
		t.Errorf("output %q missing diagnostic text", got)
	}
}

// TestAlertReporter_Blocks verifies the reporter waits for a line of
// input before returning when given an explicit reader.
func TestAlertReporter_Blocks(t *testing.T) {
	var logOut, alertOut bytes.Buffer
	logger := util.NewLogger(0)
	logger.SetOutput(&logOut)

	rep := &AlertReporter{
		Logger: logger,
		In:     strings.NewReader("\n"),
		Out:    &alertOut,
	}
	rep.Report("timeout: connect 127.0.0.1:9000: no completion within 10s")

	if !strings.Contains(alertOut.String(), "ALERT:") {
		t.Errorf("alert output %q missing prompt", alertOut.String())
	}
	if !strings.Contains(logOut.String(), "timeout") {
		t.Errorf("log output %q missing diagnostic", logOut.String())
	}
}

// TestAlertReporter_NonInteractive verifies reporting degrades to
// log-only when stdin is not a terminal (always true under go test).
func TestAlertReporter_NonInteractive(t *testing.T) {
	var out bytes.Buffer
	logger := util.NewLogger(0)
	logger.SetOutput(&out)

	rep := &AlertReporter{Logger: logger}

	done := make(chan struct{})
	go func() {
		rep.Report("transport: wire fell out")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Report blocked without a terminal")
	}
	if !strings.Contains(out.String(), "wire fell out") {
		t.Errorf("output %q missing diagnostic", out.String())
	}
}

func TestNewReporter(t *testing.T) {
	logger := util.NewLogger(0)

	cfg := config.Default()
	if _, ok := NewReporter(cfg, logger).(*LogReporter); !ok {
		t.Error("default reporter is not a LogReporter")
	}

	cfg.Alert = true
	if _, ok := NewReporter(cfg, logger).(*AlertReporter); !ok {
		t.Error("alert reporter is not an AlertReporter")
	}
}
