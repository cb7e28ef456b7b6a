// Package cmd wires up the CLI flags and dispatches to the transaction
// client.
package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"gotx/config"
	txerr "gotx/internal/errors"
	"gotx/internal/metrics"
	"gotx/internal/retry"
	"gotx/internal/transport"
	"gotx/tunnel"
	"gotx/txn"
	"gotx/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X gotx/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate gotx mode.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Default()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("gotx", flag.ContinueOnError)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Echo-server listen mode")
	fs.IntVarP(&cfg.LocalPort, "port", "p", cfg.LocalPort, "Local port (listen port in -l mode, source port otherwise)")
	fs.BoolVarP(&cfg.KeepOpen, "keep-open", "k", cfg.KeepOpen, "Accept multiple connections (with -l)")

	// ── transaction ──────────────────────────────────────────────
	fs.StringVarP(&cfg.Data, "data", "d", cfg.Data, "Payload to send")
	fs.StringVar(&cfg.PayloadFile, "file", cfg.PayloadFile, "Read payload from file")
	fs.IntVarP(&cfg.BufferSize, "buffer-size", "b", cfg.BufferSize, "Receive buffer capacity in bytes")
	fs.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "Connect phase deadline")
	fs.DurationVar(&cfg.SendTimeout, "send-timeout", cfg.SendTimeout, "Send phase deadline (with --separate-send)")
	fs.DurationVar(&cfg.ReceiveTimeout, "receive-timeout", cfg.ReceiveTimeout, "Receive phase deadline")
	fs.BoolVar(&cfg.SeparateSend, "separate-send", cfg.SeparateSend, "Time the send as its own phase instead of bundling it with connect")

	// ── resilience ───────────────────────────────────────────────
	fs.IntVarP(&cfg.Retries, "retries", "r", cfg.Retries, "Retry a failed transaction up to N more times")
	fs.IntVar(&cfg.ProbeCount, "probe", cfg.ProbeCount, "Repeat the transaction N times and summarise")
	fs.DurationVar(&cfg.ProbeInterval, "interval", cfg.ProbeInterval, "Delay between probe attempts")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "SSH tunnel via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.Alert, "alert", cfg.Alert, "Block for acknowledgement when a transaction fails")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print metrics snapshot after the run")
	fs.BoolVar(&cfg.HexDump, "hex", cfg.HexDump, "Print the reply as a hex dump")

	var dryRun, showVersion, showHelp bool
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("gotx %s\n", version)
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return fmt.Errorf("tunnel: %w", err)
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Listen {
		if _, err := util.ParseAddress(cfg.Host, cfg.Port); err != nil {
			return fmt.Errorf("destination: %w", err)
		}
	}

	if dryRun {
		fmt.Println("configuration ok")
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	if cfg.Listen {
		return runListen(ctx, cfg, logger)
	}

	dialer := buildDialer(cfg, logger)
	defer dialer.Close() //nolint:errcheck

	reporter := txn.NewReporter(cfg, logger)
	client := txn.New(cfg, dialer, reporter, logger)

	payload, err := loadPayload(cfg)
	if err != nil {
		return err
	}

	if cfg.ProbeCount > 0 {
		return runProbe(ctx, cfg, client, logger, payload)
	}
	return runTransaction(ctx, cfg, client, payload)
}

// ── modes ────────────────────────────────────────────────────────────

func runListen(ctx context.Context, cfg *config.Config, logger *util.Logger) error {
	host := cfg.Host
	if host == "" {
		host = "0.0.0.0"
	}
	srv := &txn.EchoServer{
		Address:  util.FormatAddr(host, cfg.LocalPort),
		KeepOpen: cfg.KeepOpen,
		Logger:   logger,
		Metrics:  metrics.New(),
	}
	err := srv.Run(ctx)
	if cfg.Stats {
		fmt.Fprintln(os.Stderr, srv.Metrics.JSON())
	}
	return err
}

func runProbe(ctx context.Context, cfg *config.Config, client *txn.Client, logger *util.Logger, payload []byte) error {
	breaker := retry.NewCircuitBreaker(&retry.CircuitBreakerConfig{
		OnStateChange: func(from, to retry.State) {
			logger.Warn("circuit %s -> %s", from, to)
		},
	})

	p := &txn.Prober{
		Client:   client,
		Count:    cfg.ProbeCount,
		Interval: cfg.ProbeInterval,
		Breaker:  breaker,
		Logger:   logger,
	}

	results := p.Run(ctx, cfg.Host, cfg.Port, payload, cfg.BufferSize)

	var ok int
	var total time.Duration
	for _, r := range results {
		if r.Err == nil {
			ok++
			total += r.Duration
		}
	}
	fmt.Printf("%d/%d probes succeeded\n", ok, len(results))
	if ok > 0 {
		fmt.Printf("average round trip %v\n", (total / time.Duration(ok)).Round(time.Millisecond))
	}
	if cfg.Stats {
		fmt.Fprintln(os.Stderr, client.Metrics.JSON())
	}
	if ok == 0 {
		return fmt.Errorf("all %d probes failed", len(results))
	}
	return nil
}

func runTransaction(ctx context.Context, cfg *config.Config, client *txn.Client, payload []byte) error {
	buf := make([]byte, cfg.BufferSize)

	run := func() (int, error) {
		for i := range buf {
			buf[i] = 0
		}
		return client.Do(ctx, cfg.Host, cfg.Port, payload, buf)
	}

	var n int
	var err error
	if cfg.Retries > 0 {
		backoff := retry.DefaultBackoff()
		backoff.MaxAttempts = cfg.Retries + 1
		backoff.InitialDelay = 500 * time.Millisecond
		err = backoff.Do(ctx, func(attempt int) error {
			var derr error
			n, derr = run()
			if derr != nil && txerr.IsInput(derr) {
				// Input never changes between attempts.
				return retry.Permanent(derr)
			}
			return derr
		})
	} else {
		n, err = run()
	}

	if err != nil {
		client.Report(err)
		if cfg.Stats {
			fmt.Fprintln(os.Stderr, client.Metrics.JSON())
		}
		return err
	}

	if cfg.HexDump {
		fmt.Print(hex.Dump(buf[:n]))
	} else {
		os.Stdout.Write(util.TrimPadding(buf)) //nolint:errcheck
		fmt.Println()
	}
	if cfg.Stats {
		fmt.Fprintln(os.Stderr, client.Metrics.JSON())
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────

func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
		}, logger)
	}
	return &transport.TCPDialer{LocalPort: cfg.LocalPort}
}

func loadPayload(cfg *config.Config) ([]byte, error) {
	if cfg.PayloadFile != "" {
		data, err := os.ReadFile(cfg.PayloadFile)
		if err != nil {
			return nil, fmt.Errorf("payload file: %w", err)
		}
		return data, nil
	}
	if cfg.Data != "" {
		return []byte(cfg.Data), nil
	}
	// Piped stdin is the payload of last resort; an interactive
	// terminal is never read so a bare invocation fails fast instead
	// of hanging.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("stdin payload: %w", err)
		}
		return data, nil
	}
	return nil, nil
}

func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Listen {
		if len(remaining) > 1 {
			return fmt.Errorf("too many arguments for listen mode")
		}
		if len(remaining) == 1 {
			cfg.Host = remaining[0]
		}
		return nil
	}

	if len(remaining) < 1 {
		return fmt.Errorf("destination address required (use --help for usage)")
	}
	cfg.Host = remaining[0]

	if len(remaining) < 2 {
		return fmt.Errorf("destination port required")
	}
	if len(remaining) > 2 {
		return fmt.Errorf("too many arguments")
	}

	port, err := config.ParsePort(remaining[1])
	if err != nil {
		return err
	}
	cfg.Port = port
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `gotx – one-shot TCP transaction client v%s

Sends a payload to a remote endpoint and prints the reply, with an
independent deadline on every phase of the exchange.

Usage:
  gotx [options] -d <payload> <address> <port>   Run one transaction
  gotx -l -p <port> [options] [bind-address]     Echo-server listen mode
  gotx --probe N [options] <address> <port>      Repeat and summarise
  gotx -T user@gateway [options] <address> <port> Transaction via SSH

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  gotx -d 'STATUS?' 192.0.2.10 9000              Query a device
  gotx --file req.bin --hex 192.0.2.10 9000      Binary payload, hex reply
  gotx --receive-timeout 2s 192.0.2.10 9000 -d x Slow endpoint, short budget
  gotx -l -p 9000 -k                             Keep an echo server up
  gotx --probe 10 --interval 500ms -d p 10.0.0.4 9000
  echo 'PING' | gotx 192.0.2.10 9000             Payload from stdin
`)
}
