package util

import (
	"bytes"
	"sync"
)

// DefaultBufSize is the standard receive buffer capacity.  Replies
// longer than the buffer are truncated by the transport read, so the
// default matches the largest reply the protocol is expected to carry.
const DefaultBufSize = 1024

// TrimPadding returns b without its trailing zero bytes.  Receive
// buffers are fixed-capacity and zero-filled, so the reply occupies a
// prefix and the caller trims the padding.
func TrimPadding(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}

// bufPool recycles receive buffers for callers that run many
// transactions back to back (probe mode), reducing GC pressure.
var bufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves a zeroed buffer from the pool.  Callers must return
// it with [PutBuf] when finished.
func GetBuf() *[]byte {
	buf := bufPool.Get().(*[]byte)
	// Recycled buffers still hold the previous reply; zero them so
	// TrimPadding sees clean padding.
	for i := range *buf {
		(*buf)[i] = 0
	}
	return buf
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	bufPool.Put(buf)
}
