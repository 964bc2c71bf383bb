package core

import "errors"

// Frame is a raw encoded outbound message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

var (
	// ErrBackpressure means the connection's send queue is full.
	ErrBackpressure = errors.New("backpressure")
	// ErrConnClosed means the connection already shut down.
	ErrConnClosed = errors.New("connection closed")
)
