// Package metrics provides lightweight counters for tracking what a
// gotx run did: transactions attempted, bytes moved, timeouts per
// phase.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	txerr "gotx/internal/errors"
)

// Collector tracks runtime metrics for a gotx session.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	transactionsTotal  atomic.Int64
	transactionsFailed atomic.Int64
	inputRejected      atomic.Int64
	bytesSent          atomic.Int64
	bytesReceived      atomic.Int64
	connectTimeouts    atomic.Int64
	sendTimeouts       atomic.Int64
	receiveTimeouts    atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Transaction metrics ──────────────────────────────────────────────

// TransactionDone records a completed transaction and its outcome.
func (c *Collector) TransactionDone(ok bool) {
	if c == nil {
		return
	}
	c.transactionsTotal.Add(1)
	if !ok {
		c.transactionsFailed.Add(1)
	}
}

// InputRejected records a transaction refused before any socket was
// opened.
func (c *Collector) InputRejected() {
	if c == nil {
		return
	}
	c.inputRejected.Add(1)
}

// Transactions returns the lifetime transaction count.
func (c *Collector) Transactions() int64 {
	if c == nil {
		return 0
	}
	return c.transactionsTotal.Load()
}

// Failed returns how many transactions ended in failure.
func (c *Collector) Failed() int64 {
	if c == nil {
		return 0
	}
	return c.transactionsFailed.Load()
}

// Rejected returns how many calls failed input validation.
func (c *Collector) Rejected() int64 {
	if c == nil {
		return 0
	}
	return c.inputRejected.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesSent records n payload bytes written to the network.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesSent.Add(n)
}

// BytesReceived records n reply bytes read from the network.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesReceived.Add(n)
}

// TotalBytesSent returns total payload bytes written.
func (c *Collector) TotalBytesSent() int64 {
	if c == nil {
		return 0
	}
	return c.bytesSent.Load()
}

// TotalBytesReceived returns total reply bytes read.
func (c *Collector) TotalBytesReceived() int64 {
	if c == nil {
		return 0
	}
	return c.bytesReceived.Load()
}

// ── Timeout metrics ──────────────────────────────────────────────────

// PhaseTimeout records that the given phase exceeded its deadline.
func (c *Collector) PhaseTimeout(phase txerr.Phase) {
	if c == nil {
		return
	}
	switch phase {
	case txerr.PhaseConnect:
		c.connectTimeouts.Add(1)
	case txerr.PhaseSend:
		c.sendTimeouts.Add(1)
	case txerr.PhaseReceive:
		c.receiveTimeouts.Add(1)
	}
}

// ConnectTimeouts returns the connect-phase timeout count.
func (c *Collector) ConnectTimeouts() int64 {
	if c == nil {
		return 0
	}
	return c.connectTimeouts.Load()
}

// ReceiveTimeouts returns the receive-phase timeout count.
func (c *Collector) ReceiveTimeouts() int64 {
	if c == nil {
		return 0
	}
	return c.receiveTimeouts.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError stores the most recent failure message and its time.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime             string `json:"uptime"`
	Transactions       int64  `json:"transactions"`
	TransactionsFailed int64  `json:"transactions_failed"`
	InputRejected      int64  `json:"input_rejected"`
	BytesSent          int64  `json:"bytes_sent"`
	BytesReceived      int64  `json:"bytes_received"`
	ConnectTimeouts    int64  `json:"connect_timeouts"`
	SendTimeouts       int64  `json:"send_timeouts"`
	ReceiveTimeouts    int64  `json:"receive_timeouts"`
	LastError          string `json:"last_error,omitempty"`
	LastErrorMessage   string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:             time.Since(c.startTime).Truncate(time.Second).String(),
		Transactions:       c.transactionsTotal.Load(),
		TransactionsFailed: c.transactionsFailed.Load(),
		InputRejected:      c.inputRejected.Load(),
		BytesSent:          c.bytesSent.Load(),
		BytesReceived:      c.bytesReceived.Load(),
		ConnectTimeouts:    c.connectTimeouts.Load(),
		SendTimeouts:       c.sendTimeouts.Load(),
		ReceiveTimeouts:    c.receiveTimeouts.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
