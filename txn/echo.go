package txn

import (
	"context"
	"io"
	"net"
	"time"

	"gotx/config"
	txerr "gotx/internal/errors"
	"gotx/internal/metrics"
	"gotx/util"
)

// EchoServer accepts TCP connections and mirrors every byte back to the
// sender.  It exists for the listen mode of the CLI and for exercising
// clients end to end: a transaction against an echo server should hand
// back exactly the payload it sent.
type EchoServer struct {
	// Address is the listen address, for example "127.0.0.1:9000".
	Address string

	// KeepOpen keeps accepting after the first connection.  When
	// false the server handles a single connection and returns,
	// matching the one-shot nature of a transaction.
	KeepOpen bool

	// Timeout bounds how long an idle connection is held.  Zero
	// means config.DefaultEchoTimeout.
	Timeout time.Duration

	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Run listens on s.Address and serves until the context is cancelled
// or, with KeepOpen unset, until the first connection has been echoed.
func (s *EchoServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Address)
	if err != nil {
		return txerr.WrapTransport("listen", s.Address, err)
	}
	defer ln.Close()

	s.logger().Info("listening on %s", ln.Addr())

	// Unblock Accept when the context goes away.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return txerr.WrapTransport("accept", s.Address, err)
		}

		if !s.KeepOpen {
			err := s.echo(conn)
			if err != nil {
				s.logger().Warn("echo %s: %v", conn.RemoteAddr(), err)
			}
			return err
		}
		go func(c net.Conn) {
			if err := s.echo(c); err != nil {
				s.logger().Warn("echo %s: %v", c.RemoteAddr(), err)
			}
		}(conn)
	}
}

// echo copies the connection back onto itself until the peer closes
// its write side or the idle deadline fires.
func (s *EchoServer) echo(conn net.Conn) error {
	defer conn.Close()

	timeout := s.Timeout
	if timeout == 0 {
		timeout = config.DefaultEchoTimeout
	}
	conn.SetDeadline(time.Now().Add(timeout)) //nolint:errcheck

	s.logger().Verbose("connection from %s", conn.RemoteAddr())

	n, err := io.Copy(conn, conn)
	s.Metrics.BytesReceived(n)
	s.Metrics.BytesSent(n)
	if err != nil {
		s.Metrics.RecordError(err.Error())
		return txerr.WrapTransport("echo", conn.RemoteAddr().String(), err)
	}
	s.logger().Verbose("echoed %d bytes to %s", n, conn.RemoteAddr())
	return nil
}

func (s *EchoServer) logger() *util.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return util.NewLogger(0)
}
