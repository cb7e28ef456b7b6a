// Package config defines the runtime configuration for gotx and
// provides helpers for parsing tunnel specifications and ports.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	txerr "gotx/internal/errors"
)

// Config holds every tuneable for a single gotx run.
type Config struct {
	// ── Destination ──────────────────────────────────────────────────
	Host      string // numeric IP literal of the remote endpoint
	Port      int    // destination port
	LocalPort int    // -p: local bind port (listen port in -l mode)
	Listen    bool
	KeepOpen  bool

	// ── Transaction ──────────────────────────────────────────────────
	Data           string // -d: inline payload
	PayloadFile    string // --file: payload read from disk
	BufferSize     int    // fixed receive buffer capacity
	ConnectTimeout time.Duration
	SendTimeout    time.Duration
	ReceiveTimeout time.Duration
	SeparateSend   bool // issue send as its own timed phase

	// ── Resilience ───────────────────────────────────────────────────
	Retries       int // extra attempts after a failed transaction
	ProbeCount    int // --probe: repeat the transaction N times
	ProbeInterval time.Duration

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	Alert   bool // block for operator acknowledgement on failure
	Stats   bool // print the metrics snapshot after the run
	HexDump bool // print the reply as a hex dump
}

// Default returns a Config carrying the documented defaults.  Callers
// overlay environment variables and CLI flags on top.
func Default() *Config {
	return &Config{
		BufferSize:     DefaultBufferSize,
		ConnectTimeout: DefaultPhaseTimeout,
		SendTimeout:    DefaultPhaseTimeout,
		ReceiveTimeout: DefaultPhaseTimeout,
		ProbeInterval:  DefaultProbeInterval,
	}
}

// ── Port parsing ─────────────────────────────────────────────────────

// ParsePort parses a single destination port.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Payload and address validation happen at transaction time; Validate
// only covers what can be judged before a run starts.
func (c *Config) Validate() error {
	if c.Listen {
		if c.LocalPort < 1 || c.LocalPort > 65535 {
			return &txerr.ConfigError{
				Field:   "port",
				Message: "listen mode requires a local port",
				Hint:    "use -l -p <port>",
			}
		}
		if c.ProbeCount > 0 {
			return fmt.Errorf("listen mode and probe mode are mutually exclusive")
		}
		if c.TunnelEnabled {
			return fmt.Errorf("listen mode through an SSH tunnel is not supported")
		}
	} else {
		if c.Host == "" {
			return fmt.Errorf("destination host is required (use --help for usage)")
		}
		if c.Port == 0 {
			return fmt.Errorf("destination port is required")
		}
	}

	if c.BufferSize < 1 {
		return &txerr.ConfigError{
			Field:   "buffer-size",
			Value:   c.BufferSize,
			Message: "must be positive",
			Hint:    fmt.Sprintf("the default is %d", DefaultBufferSize),
		}
	}

	if c.ConnectTimeout < 0 || c.SendTimeout < 0 || c.ReceiveTimeout < 0 {
		return fmt.Errorf("phase timeouts must not be negative")
	}

	if c.Retries < 0 {
		return &txerr.ConfigError{
			Field:   "retries",
			Value:   c.Retries,
			Message: "must not be negative",
		}
	}

	if c.Retries > 0 && c.ProbeCount > 0 {
		return fmt.Errorf("--retries and --probe are mutually exclusive")
	}

	if c.Data != "" && c.PayloadFile != "" {
		return fmt.Errorf("-d and --file are mutually exclusive")
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return fmt.Errorf("tunnel host is required")
	}

	return nil
}
