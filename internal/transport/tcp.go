package transport

import (
	"context"
	"net"
	"time"

	txerr "gotx/internal/errors"
)

// TCPDialer opens the plain TCP connections transactions ride on.  A
// non-zero LocalPort pins the source port, which endpoints behind
// source-filtering ACLs require before they will answer.
type TCPDialer struct {
	Timeout   time.Duration
	LocalPort int
}

// Dial connects to address.  Failures come back as a TransportError
// with retryability already classified, so the transaction layer can
// hand them straight to its retry policy.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	if d.LocalPort > 0 {
		nd.LocalAddr = &net.TCPAddr{Port: d.LocalPort}
	}

	conn, err := nd.DialContext(ctx, network, address)
	if err != nil {
		return nil, txerr.WrapTransport("connect", address, err)
	}
	return conn, nil
}

// Close is a no-op; the dialer keeps no state between transactions.
func (d *TCPDialer) Close() error { return nil }
