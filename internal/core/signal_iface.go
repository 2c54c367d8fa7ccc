package core

import "errors"

// Frame is a raw encoded message for one connection.
type Frame []byte

// ConnID identifies one relay connection for its whole lifetime.
type ConnID string

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues f without blocking; ErrBackpressure when the queue is full.
	TrySend(Frame) error
	Close()
}
