// Package txn implements the one-shot TCP transaction core: a single
// connect→send→receive exchange against a caller-supplied endpoint,
// with an independent timeout bounding every asynchronous phase.
//
// Each call opens a fresh connection and closes it when the exchange
// ends, whatever the outcome.  There is no pooling, framing, or
// pipelining: payload bytes go out as-is, reply bytes come back as-is
// into a fixed-capacity buffer.
package txn

import "net"

// phaseResult carries the outcome of one asynchronous phase from the
// goroutine performing it to the waiting transaction.  The channel it
// travels on is buffered, so a phase that completes after its waiter
// has given up never blocks.
type phaseResult struct {
	conn net.Conn
	n    int
	err  error
}

// reap releases whatever socket an abandoned connect phase holds or
// will come to hold.  The dial goroutine publishes the socket on
// dialed the moment the dial lands, before the bundled send, so a
// write wedged against a peer that never reads is unblocked by the
// close here rather than waiting on the peer.  When the dial itself
// failed, the error arrives on done and there is nothing to release.
func reap(dialed <-chan net.Conn, done <-chan phaseResult) {
	select {
	case conn := <-dialed:
		conn.Close()
	case r := <-done:
		if r.conn != nil {
			r.conn.Close()
		}
	}
}

// shutdown is the unconditional end-of-transaction teardown: half-close
// the write side so the remote sees EOF, then release the socket.  It
// runs on every exit path, after failed phases included, and is safe to
// invoke on an already-closed connection.
func shutdown(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.CloseWrite() //nolint:errcheck
	}
	conn.Close()
}
