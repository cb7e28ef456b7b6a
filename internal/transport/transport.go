// Package transport provides abstractions for opening the connection a
// transaction runs over.  Transports handle the "how" of reaching the
// endpoint — a direct TCP dial or an SSH-tunnelled one — independent of
// the connect/send/receive choreography the txn package layers on top.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.  Implementations include
// a plain TCP dialer and an SSH-tunnelled dialer that routes the
// transaction through an encrypted gateway.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
