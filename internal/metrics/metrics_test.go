package metrics

import (
	"strings"
	"sync"
	"testing"

	txerr "gotx/internal/errors"
)

func TestCollector_Transactions(t *testing.T) {
	c := New()

	c.TransactionDone(true)
	c.TransactionDone(true)
	c.TransactionDone(false)

	if got := c.Transactions(); got != 3 {
		t.Errorf("Transactions = %d, want 3", got)
	}
	if got := c.Failed(); got != 1 {
		t.Errorf("Failed = %d, want 1", got)
	}
}

func TestCollector_Bytes(t *testing.T) {
	c := New()

	c.BytesSent(4)
	c.BytesSent(16)
	c.BytesReceived(1024)

	if got := c.TotalBytesSent(); got != 20 {
		t.Errorf("TotalBytesSent = %d, want 20", got)
	}
	if got := c.TotalBytesReceived(); got != 1024 {
		t.Errorf("TotalBytesReceived = %d, want 1024", got)
	}
}

func TestCollector_PhaseTimeouts(t *testing.T) {
	c := New()

	c.PhaseTimeout(txerr.PhaseConnect)
	c.PhaseTimeout(txerr.PhaseConnect)
	c.PhaseTimeout(txerr.PhaseReceive)
	c.PhaseTimeout(txerr.Phase("bogus")) // silently ignored

	if got := c.ConnectTimeouts(); got != 2 {
		t.Errorf("ConnectTimeouts = %d, want 2", got)
	}
	if got := c.ReceiveTimeouts(); got != 1 {
		t.Errorf("ReceiveTimeouts = %d, want 1", got)
	}
}

func TestCollector_Snapshot(t *testing.T) {
	c := New()
	c.TransactionDone(false)
	c.InputRejected()
	c.BytesSent(4)
	c.RecordError("receive 127.0.0.1:9: no completion within 10s")

	s := c.Snapshot()
	if s.Transactions != 1 || s.TransactionsFailed != 1 {
		t.Errorf("snapshot transactions = %d/%d, want 1/1",
			s.Transactions, s.TransactionsFailed)
	}
	if s.InputRejected != 1 {
		t.Errorf("InputRejected = %d, want 1", s.InputRejected)
	}
	if s.LastErrorMessage == "" || s.LastError == "" {
		t.Error("last error fields should be populated")
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.TransactionDone(true)
	c.BytesReceived(512)

	out := c.JSON()
	for _, key := range []string{`"transactions": 1`, `"bytes_received": 512`} {
		if !strings.Contains(out, key) {
			t.Errorf("JSON missing %s:\n%s", key, out)
		}
	}
}

// TestNilCollector verifies every method is a safe no-op on nil.
func TestNilCollector(t *testing.T) {
	var c *Collector

	c.TransactionDone(true)
	c.InputRejected()
	c.BytesSent(1)
	c.BytesReceived(1)
	c.PhaseTimeout(txerr.PhaseConnect)
	c.RecordError("x")

	if c.Transactions() != 0 || c.Failed() != 0 || c.Rejected() != 0 {
		t.Error("nil collector counters should read 0")
	}
	if s := c.Snapshot(); s.Transactions != 0 {
		t.Error("nil collector snapshot should be zero")
	}
}

// TestCollector_Concurrent exercises the atomic counters from many
// goroutines.
func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.TransactionDone(true)
			c.BytesSent(10)
			c.BytesReceived(10)
		}()
	}
	wg.Wait()

	if got := c.Transactions(); got != 50 {
		t.Errorf("Transactions = %d, want 50", got)
	}
	if got := c.TotalBytesSent(); got != 500 {
		t.Errorf("TotalBytesSent = %d, want 500", got)
	}
}
