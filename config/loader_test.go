package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Empty(t *testing.T) {
	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.BufferSize != DefaultBufferSize {
		t.Errorf("BufferSize = %d, want default %d", cfg.BufferSize, DefaultBufferSize)
	}
	if cfg.ConnectTimeout != DefaultPhaseTimeout {
		t.Errorf("ConnectTimeout = %v, want default %v", cfg.ConnectTimeout, DefaultPhaseTimeout)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("GOTX_HOST", "192.0.2.10")
	t.Setenv("GOTX_PORT", "9000")
	t.Setenv("GOTX_DATA", "payload")
	t.Setenv("GOTX_BUFFER_SIZE", "4096")
	t.Setenv("GOTX_RETRIES", "3")
	t.Setenv("GOTX_VERBOSE", "2")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Host != "192.0.2.10" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.Data != "payload" {
		t.Errorf("Data = %q", cfg.Data)
	}
	if cfg.BufferSize != 4096 {
		t.Errorf("BufferSize = %d", cfg.BufferSize)
	}
	if cfg.Retries != 3 {
		t.Errorf("Retries = %d", cfg.Retries)
	}
	if cfg.Verbose != 2 {
		t.Errorf("Verbose = %d", cfg.Verbose)
	}
}

func TestLoadFromEnv_Booleans(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"0", false},
		{"false", false},
		{"banana", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Setenv("GOTX_LISTEN", tt.value)
			cfg := Default()
			LoadFromEnv(cfg)
			if cfg.Listen != tt.want {
				t.Errorf("Listen = %v for %q, want %v", cfg.Listen, tt.value, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Durations(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"go syntax", "2s", 2 * time.Second},
		{"milliseconds", "500ms", 500 * time.Millisecond},
		{"bare integer is seconds", "7", 7 * time.Second},
		{"garbage keeps default", "soon", DefaultPhaseTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOTX_RECEIVE_TIMEOUT", tt.value)
			cfg := Default()
			LoadFromEnv(cfg)
			if cfg.ReceiveTimeout != tt.want {
				t.Errorf("ReceiveTimeout = %v, want %v", cfg.ReceiveTimeout, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_SSHFields(t *testing.T) {
	t.Setenv("GOTX_TUNNEL", "admin@bastion:2222")
	t.Setenv("GOTX_SSH_KEY", "/home/op/.ssh/id_ed25519")
	t.Setenv("GOTX_SSH_AGENT", "yes")
	t.Setenv("GOTX_STRICT_HOSTKEY", "1")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.TunnelSpec != "admin@bastion:2222" {
		t.Errorf("TunnelSpec = %q", cfg.TunnelSpec)
	}
	if cfg.SSHKeyPath != "/home/op/.ssh/id_ed25519" {
		t.Errorf("SSHKeyPath = %q", cfg.SSHKeyPath)
	}
	if !cfg.UseSSHAgent {
		t.Error("UseSSHAgent = false")
	}
	if !cfg.StrictHostKey {
		t.Error("StrictHostKey = false")
	}
}

// TestLoadFromEnv_InvalidIntIgnored verifies a malformed integer leaves
// the default untouched instead of zeroing it.
func TestLoadFromEnv_InvalidIntIgnored(t *testing.T) {
	t.Setenv("GOTX_BUFFER_SIZE", "lots")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.BufferSize != DefaultBufferSize {
		t.Errorf("BufferSize = %d, want default %d", cfg.BufferSize, DefaultBufferSize)
	}
}
