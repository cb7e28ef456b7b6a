package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, environment variable loading, and tests.

const (
	// DefaultPhaseTimeout bounds each asynchronous transaction phase
	// (connect, send, receive) independently.
	DefaultPhaseTimeout = 10 * time.Second

	// DefaultBufferSize is the fixed capacity of the receive buffer.
	// Longer replies are truncated by the transport read.
	DefaultBufferSize = 1024

	// DefaultProbeInterval spaces consecutive probe transactions.
	DefaultProbeInterval = 1 * time.Second

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultTunnelTimeout is the SSH gateway connection timeout.
	DefaultTunnelTimeout = 30 * time.Second

	// DefaultEchoTimeout is the per-connection deadline in listen mode.
	DefaultEchoTimeout = 60 * time.Second
)
