package txn

import (
	"context"
	"io"
	"net"
	"time"

	"gotx/config"
	txerr "gotx/internal/errors"
	"gotx/internal/metrics"
	"gotx/internal/transport"
	"gotx/util"
)

// Client performs one-shot TCP transactions.  The zero value is usable
// for tests; New wires it from a Config.  A Client may be shared by
// concurrent callers: every transaction owns its own socket and phase
// channels, so no state crosses between calls.
type Client struct {
	Dialer   transport.Dialer
	Reporter Reporter
	Logger   *util.Logger
	Metrics  *metrics.Collector

	ConnectTimeout time.Duration
	SendTimeout    time.Duration
	ReceiveTimeout time.Duration

	// SeparateSend issues the send as its own timed phase instead of
	// bundling the payload write into the connect phase.  Bundling is
	// the default: the payload rides out as soon as the dial lands,
	// and one deadline covers both.
	SeparateSend bool
}

// New builds a Client from the given configuration.
func New(cfg *config.Config, dialer transport.Dialer, reporter Reporter, logger *util.Logger) *Client {
	return &Client{
		Dialer:         dialer,
		Reporter:       reporter,
		Logger:         logger,
		Metrics:        metrics.New(),
		ConnectTimeout: cfg.ConnectTimeout,
		SendTimeout:    cfg.SendTimeout,
		ReceiveTimeout: cfg.ReceiveTimeout,
		SeparateSend:   cfg.SeparateSend,
	}
}

// Execute runs one transaction and reports any failure through the
// configured reporter.  On success buf holds the reply followed by
// zero padding; the caller trims with util.TrimPadding.  On failure
// the buffer contents are not meaningful.
//
// Execute never returns an error and never panics on network trouble:
// every failure kind is converted to false plus one diagnostic.
func (c *Client) Execute(address string, port int, payload, buf []byte) bool {
	_, err := c.Do(context.Background(), address, port, payload, buf)
	if err != nil {
		c.Report(err)
		return false
	}
	return true
}

// Do runs one transaction and returns the reply length.  Unlike
// Execute it surfaces the error to the caller and leaves reporting to
// them; retry loops and probe mode drive Do directly.
func (c *Client) Do(ctx context.Context, address string, port int, payload, buf []byte) (n int, err error) {
	addr, err := c.validate(address, port, payload, buf)
	if err != nil {
		c.Metrics.InputRejected()
		return 0, err
	}

	defer func() {
		c.Metrics.TransactionDone(err == nil)
		if err != nil {
			c.Metrics.RecordError(err.Error())
		}
	}()

	c.logger().Verbose("transaction with %s: %d byte(s) out, buffer %d", addr, len(payload), len(buf))

	conn, err := c.connect(ctx, addr, payload)
	if err != nil {
		return 0, err
	}
	defer shutdown(conn)

	if c.SeparateSend {
		if err := c.send(conn, addr, payload); err != nil {
			return 0, err
		}
	}

	n, err = c.receive(conn, addr, buf)
	if err != nil {
		return 0, err
	}

	c.Metrics.BytesReceived(int64(n))
	c.logger().Verbose("transaction with %s complete: %d byte(s) in", addr, n)
	return n, nil
}

// Report sends the diagnostic for a failed transaction through the
// configured reporter.  Execute calls it internally; callers driving
// Do directly use it to keep the one-line-per-failure contract.
func (c *Client) Report(err error) {
	if c.Reporter == nil || err == nil {
		return
	}
	c.Reporter.Report(Diagnostic(err))
}

// Diagnostic renders err as a human-readable line with its error
// category up front.  InputError already carries its own "input:"
// prefix.
func Diagnostic(err error) string {
	var ie *txerr.InputError
	if txerr.As(err, &ie) {
		return ie.Error()
	}
	var te *txerr.TimeoutError
	if txerr.As(err, &te) {
		return "timeout: " + te.Error()
	}
	return "transport: " + err.Error()
}

// ── phases ───────────────────────────────────────────────────────────

// validate rejects bad input before any socket is opened.
func (c *Client) validate(address string, port int, payload, buf []byte) (string, error) {
	if net.ParseIP(address) == nil {
		return "", &txerr.InputError{Field: "address", Value: address, Message: "not an IPv4/IPv6 literal"}
	}
	if port < 1 || port > 65535 {
		return "", &txerr.InputError{Field: "port", Value: port, Message: "out of range 1-65535"}
	}
	if len(payload) == 0 {
		return "", &txerr.InputError{Field: "payload", Message: "nothing to send"}
	}
	if len(buf) == 0 {
		return "", &txerr.InputError{Field: "buffer", Message: "receive buffer has zero capacity"}
	}
	return util.FormatAddr(address, port), nil
}

// connect opens the connection and, unless SeparateSend is set, writes
// the payload before signalling completion, so the connect deadline
// covers the bundled send.
func (c *Client) connect(ctx context.Context, addr string, payload []byte) (net.Conn, error) {
	done := make(chan phaseResult, 1)
	dialed := make(chan net.Conn, 1)
	go func() {
		conn, err := c.dialer().Dial(ctx, "tcp", addr)
		if err != nil {
			done <- phaseResult{err: err}
			return
		}
		// Publish the socket before the bundled send so a timed-out
		// waiter can close it and abort a wedged write.
		dialed <- conn
		if !c.SeparateSend {
			if _, err := conn.Write(payload); err != nil {
				conn.Close()
				done <- phaseResult{err: err}
				return
			}
		}
		done <- phaseResult{conn: conn}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, txerr.WrapTransport("connect", addr, r.err)
		}
		if !c.SeparateSend {
			c.Metrics.BytesSent(int64(len(payload)))
		}
		return r.conn, nil
	case <-time.After(c.connectTimeout()):
		c.Metrics.PhaseTimeout(txerr.PhaseConnect)
		go reap(dialed, done)
		return nil, txerr.Timeout(txerr.PhaseConnect, addr, c.connectTimeout())
	case <-ctx.Done():
		go reap(dialed, done)
		return nil, txerr.WrapTransport("connect", addr, ctx.Err())
	}
}

// send writes the payload as its own timed phase (SeparateSend mode).
func (c *Client) send(conn net.Conn, addr string, payload []byte) error {
	done := make(chan phaseResult, 1)
	go func() {
		n, err := conn.Write(payload)
		done <- phaseResult{n: n, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return txerr.WrapTransport("send", addr, r.err)
		}
		c.Metrics.BytesSent(int64(r.n))
		return nil
	case <-time.After(c.sendTimeout()):
		c.Metrics.PhaseTimeout(txerr.PhaseSend)
		// The deferred shutdown closes the socket and unblocks the
		// writer goroutine.
		return txerr.Timeout(txerr.PhaseSend, addr, c.sendTimeout())
	}
}

// receive reads the reply into the caller's buffer.  One read fills as
// much of the buffer as the remote sent; excess reply bytes are
// truncated by the transport, not treated as an error.
func (c *Client) receive(conn net.Conn, addr string, buf []byte) (int, error) {
	done := make(chan phaseResult, 1)
	go func() {
		n, err := conn.Read(buf)
		done <- phaseResult{n: n, err: err}
	}()

	select {
	case r := <-done:
		// EOF counts as a completed receive: the remote answered (or
		// declined to) and closed.
		if r.err != nil && r.err != io.EOF {
			return 0, txerr.WrapTransport("receive", addr, r.err)
		}
		return r.n, nil
	case <-time.After(c.receiveTimeout()):
		c.Metrics.PhaseTimeout(txerr.PhaseReceive)
		// The deferred shutdown closes the socket and unblocks the
		// reader goroutine.
		return 0, txerr.Timeout(txerr.PhaseReceive, addr, c.receiveTimeout())
	}
}

// ── defaults ─────────────────────────────────────────────────────────

func (c *Client) dialer() transport.Dialer {
	if c.Dialer != nil {
		return c.Dialer
	}
	return &transport.TCPDialer{}
}

func (c *Client) logger() *util.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return util.NewLogger(0)
}

func (c *Client) connectTimeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return config.DefaultPhaseTimeout
}

func (c *Client) sendTimeout() time.Duration {
	if c.SendTimeout > 0 {
		return c.SendTimeout
	}
	return config.DefaultPhaseTimeout
}

func (c *Client) receiveTimeout() time.Duration {
	if c.ReceiveTimeout > 0 {
		return c.ReceiveTimeout
	}
	return config.DefaultPhaseTimeout
}
