// Package errors provides the failure taxonomy for gotx transactions.
//
// Every failed transaction falls into one of four kinds: an input
// error (caller-correctable, no socket was opened), a connect or
// receive timeout (a phase exceeded its deadline), or a transport
// error (any other socket-level failure).  The structured types carry
// the operation, address, and underlying cause so diagnostics stay
// useful without stack traces.
package errors

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ── Phases ───────────────────────────────────────────────────────────

// Phase identifies one stage of a transaction.
type Phase string

const (
	PhaseConnect Phase = "connect"
	PhaseSend    Phase = "send"
	PhaseReceive Phase = "receive"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrConnectTimeout = errors.New("connect phase timed out")
	ErrSendTimeout    = errors.New("send phase timed out")
	ErrReceiveTimeout = errors.New("receive phase timed out")
	ErrTunnelClosed   = errors.New("tunnel is closed")
	ErrNotConnected   = errors.New("not connected")
)

// ── Structured error types ───────────────────────────────────────────

// InputError represents a validation failure caught before any network
// activity.  The caller can correct the input and retry; there is no
// point retrying unchanged.
type InputError struct {
	Field   string      // "address", "port", "payload", "buffer"
	Value   interface{} // the offending value (nil if absent/empty)
	Message string      // human-readable explanation
}

func (e *InputError) Error() string {
	msg := "input: " + e.Field
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	return msg + ": " + e.Message
}

// TimeoutError means one transaction phase did not complete within its
// deadline.  It unwraps to the matching phase sentinel so callers can
// test with errors.Is.
type TimeoutError struct {
	Phase Phase
	Addr  string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: no completion within %v", e.Phase, e.Addr, e.Limit)
}

func (e *TimeoutError) Unwrap() error {
	switch e.Phase {
	case PhaseConnect:
		return ErrConnectTimeout
	case PhaseSend:
		return ErrSendTimeout
	case PhaseReceive:
		return ErrReceiveTimeout
	}
	return nil
}

// TransportError represents any other socket-level failure: refusal,
// reset, unreachable network, a write on a closed connection.
type TransportError struct {
	Op        string // "connect", "send", "receive", "echo"
	Addr      string
	Err       error
	Retryable bool // whether the caller should consider retrying
}

func (e *TransportError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *TransportError) Unwrap() error { return e.Err }

// SSHError represents a tunnel-specific failure with gateway context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "forward"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// WrapTransport creates a TransportError, automatically detecting
// retryability from the underlying error.  An error that is already a
// TransportError passes through unchanged, so a dialer's wrapping
// survives the phase layer instead of nesting.
func WrapTransport(op, addr string, err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return &TransportError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// Timeout creates a TimeoutError for the given phase.
func Timeout(phase Phase, addr string, limit time.Duration) *TimeoutError {
	return &TimeoutError{Phase: phase, Addr: addr, Limit: limit}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsInput reports whether err is a pre-network validation failure.
// Input errors are permanent: retrying the same arguments cannot help.
func IsInput(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsTimeout reports whether err is a phase timeout of any kind.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsRetryable reports whether err is worth retrying.  Phase timeouts
// are retryable; input errors never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsInput(err) {
		return false
	}
	if IsTimeout(err) {
		return true
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return classifyRetryable(err)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Timeout() || opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use gotx/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
