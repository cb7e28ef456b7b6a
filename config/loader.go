package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go, which seeds flag defaults
//      from the already-overlaid Config)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the GOTX_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Durations use Go
// syntax ("10s", "500ms").

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("GOTX_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("GOTX_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := envInt("GOTX_LOCAL_PORT"); v > 0 {
		cfg.LocalPort = v
	}
	if envBool("GOTX_LISTEN") {
		cfg.Listen = true
	}
	if envBool("GOTX_KEEP_OPEN") {
		cfg.KeepOpen = true
	}

	// Transaction
	if v := os.Getenv("GOTX_DATA"); v != "" {
		cfg.Data = v
	}
	if v := envInt("GOTX_BUFFER_SIZE"); v > 0 {
		cfg.BufferSize = v
	}
	if v := envDuration("GOTX_CONNECT_TIMEOUT"); v > 0 {
		cfg.ConnectTimeout = v
	}
	if v := envDuration("GOTX_SEND_TIMEOUT"); v > 0 {
		cfg.SendTimeout = v
	}
	if v := envDuration("GOTX_RECEIVE_TIMEOUT"); v > 0 {
		cfg.ReceiveTimeout = v
	}
	if envBool("GOTX_SEPARATE_SEND") {
		cfg.SeparateSend = true
	}

	// Resilience
	if v := envInt("GOTX_RETRIES"); v > 0 {
		cfg.Retries = v
	}
	if v := envDuration("GOTX_PROBE_INTERVAL"); v > 0 {
		cfg.ProbeInterval = v
	}

	// SSH tunnel
	if v := os.Getenv("GOTX_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("GOTX_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("GOTX_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("GOTX_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("GOTX_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("GOTX_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("GOTX_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
	if envBool("GOTX_ALERT") {
		cfg.Alert = true
	}
	if envBool("GOTX_STATS") {
		cfg.Stats = true
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Accept bare integers as seconds for convenience.
		if n, nerr := strconv.Atoi(v); nerr == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		return 0
	}
	return d
}
