package handoff

import (
	"errors"
	"fmt"
)

var (
	// ErrDisconnected is reported when the other end of a channel is gone: by
	// a send after the receiver has closed, and by a receive after every
	// sender has closed.
	ErrDisconnected = errors.New("channel is disconnected")

	// ErrClosed is reported by an operation on a handle that has already
	// been closed.
	ErrClosed = errors.New("handle is closed")
)

// SendError is the error reported by a send that could not be accepted
// because the receiver is gone. It returns the rejected value to the caller.
type SendError[T any] struct {
	Value T
}

// Error implements the error interface.
func (e *SendError[T]) Error() string {
	return fmt.Sprintf("send %v: %v", e.Value, ErrDisconnected)
}

// Unwrap reports ErrDisconnected, so errors.Is(err, ErrDisconnected) holds.
func (e *SendError[T]) Unwrap() error { return ErrDisconnected }
