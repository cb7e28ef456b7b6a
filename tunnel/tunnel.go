// Package tunnel defines the Tunnel interface and provides an SSH
// implementation backed by golang.org/x/crypto/ssh, used to run a
// transaction against an endpoint that is only reachable through a
// bastion host.
package tunnel

import (
	"context"
	"net"
)

// Tunnel is an encrypted path to endpoints the client cannot reach
// directly.  Sockets obtained from Dial behave like any other
// net.Conn, so a tunnelled transaction runs the same phase logic as a
// direct one.
type Tunnel interface {
	// Connect brings the tunnel up against the gateway.
	Connect(ctx context.Context) error

	// Dial opens a forwarded connection to address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close tears the tunnel down and releases its sockets.
	Close() error

	// IsAlive reports whether the gateway connection still stands.
	IsAlive() bool
}
