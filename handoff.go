// Package handoff implements a debouncing handoff channel, which lets one or
// more producers pass frequently-updated values to a single slow consumer
// without ever blocking the producers.
//
// The channel does not queue. A value sent while the consumer is waiting is
// handed to it directly; a value sent while the consumer is busy is parked in
// a single pending slot, replacing whatever was parked there before. When the
// consumer next asks for a value it gets the pending one, so values produced
// during a busy period collapse to the most recent.
package handoff

import (
	"context"
	"sync"
	"sync/atomic"
)

// Delivery reports how a sent value was accepted by a channel.
type Delivery int

const (
	// Direct means the value was handed straight to a waiting receiver.
	Direct Delivery = iota + 1

	// Buffered means the receiver was busy and the value was parked in the
	// empty pending slot.
	Buffered

	// Replaced means the receiver was busy and the value was parked in the
	// pending slot, discarding a value that had not yet been received.
	Replaced
)

func (d Delivery) String() string {
	switch d {
	case Direct:
		return "direct"
	case Buffered:
		return "buffered"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of the counters maintained by a channel.
type Stats struct {
	Sent     int64 // values accepted by a send
	Direct   int64 // values handed directly to a waiting receiver
	Buffered int64 // values parked in an empty pending slot
	Replaced int64 // values parked over an unreceived value
	Received int64 // values returned by the receiver
	Stale    int64 // pending values dropped because a newer one was received first
}

// An item is a sent value stamped with its send order.
type item[T any] struct {
	value T
	seq   uint64
}

// state is shared by all the handles of a single channel.
type state[T any] struct {
	ready chan item[T]  // unbuffered: delivers only to a parked receiver
	wake  chan struct{} // buffered(1): posted when a value is parked
	seq   atomic.Uint64 // last send stamp issued

	// μ protects the fields below.
	μ          sync.Mutex
	pending    item[T]
	hasPending bool
	last       uint64 // stamp of the last value received
	senders    int    // open sender handles
	recvClosed bool

	sendersGone chan struct{} // closed when senders reaches zero
	recvGone    chan struct{} // closed when the receiver is closed

	nSent, nDirect, nBuffered, nReplaced, nReceived, nStale atomic.Int64
}

// New constructs a new channel and returns its first sender handle and its
// receiver. Use [Sender.Clone] to give additional producers their own handle.
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &state[T]{
		ready:       make(chan item[T]),
		wake:        make(chan struct{}, 1),
		senders:     1,
		sendersGone: make(chan struct{}),
		recvGone:    make(chan struct{}),
	}
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// A Sender is a producer handle for a channel. A Sender is safe for
// concurrent use by multiple goroutines, but each producer that needs to
// close its handle independently should have its own clone.
type Sender[T any] struct {
	s      *state[T]
	closed atomic.Bool
}

// Send offers v to the channel and discards the [Delivery]. It does not block.
func (h *Sender[T]) Send(v T) error {
	_, err := h.Offer(v)
	return err
}

// Offer sends v to the channel and reports how it was accepted. Offer does
// not block.
//
// If the receiver is parked in [Receiver.Recv], v is handed to it directly.
// Otherwise v replaces the contents of the pending slot. If the receiver has
// been closed, Offer reports a *[SendError] holding v. If h is closed, Offer
// reports [ErrClosed].
func (h *Sender[T]) Offer(v T) (Delivery, error) {
	if h.closed.Load() {
		return 0, ErrClosed
	}
	s := h.s
	select {
	case <-s.recvGone:
		return 0, &SendError[T]{Value: v}
	default:
	}

	select {
	case s.ready <- item[T]{value: v, seq: s.seq.Add(1)}:
		s.nSent.Add(1)
		s.nDirect.Add(1)
		return Direct, nil
	default:
	}
	return h.park(v)
}

// park stores v in the pending slot, replacing any value already there, and
// wakes the receiver if it is waiting.
func (h *Sender[T]) park(v T) (Delivery, error) {
	s := h.s
	s.μ.Lock()
	if s.recvClosed {
		s.μ.Unlock()
		return 0, &SendError[T]{Value: v}
	} else if h.closed.Load() {
		// Closed since Offer checked; the receiver may already have seen the
		// last sender go.
		s.μ.Unlock()
		return 0, ErrClosed
	}
	d := Buffered
	if s.hasPending {
		d = Replaced
	}

	// Stamp under μ, so a value parked after a direct handoff completes is
	// ordered after it and is not dropped as stale.
	s.pending, s.hasPending = item[T]{value: v, seq: s.seq.Add(1)}, true
	s.μ.Unlock()

	// Wake a receiver that checked the slot before we filled it.
	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.nSent.Add(1)
	if d == Replaced {
		s.nReplaced.Add(1)
	} else {
		s.nBuffered.Add(1)
	}
	return d, nil
}

// Clone returns a new sender handle for the same channel. The channel stays
// connected on the producer side until every handle is closed. If h is
// closed, the clone is also closed.
func (h *Sender[T]) Clone() *Sender[T] {
	s := h.s
	s.μ.Lock()
	defer s.μ.Unlock()
	if h.closed.Load() || s.senders == 0 {
		c := &Sender[T]{s: s}
		c.closed.Store(true)
		return c
	}
	s.senders++
	return &Sender[T]{s: s}
}

// Close closes the handle. When the last open sender handle is closed, the
// receiver is woken and reports [ErrDisconnected] once it has received any
// value still pending. If h is already closed, Close reports [ErrClosed].
func (h *Sender[T]) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	s := h.s
	s.μ.Lock()
	defer s.μ.Unlock()
	s.senders--
	if s.senders == 0 {
		close(s.sendersGone)
	}
	return nil
}

// A Receiver is the consumer handle for a channel. Its Recv and TryRecv
// methods must not be called concurrently.
type Receiver[T any] struct {
	s      *state[T]
	closed atomic.Bool
}

// Recv returns the next value from the channel. If a value is pending, Recv
// returns it without blocking. Otherwise it blocks until a sender hands it a
// value, every sender has closed, or ctx ends.
//
// Once every sender has closed and no value remains, Recv reports
// [ErrDisconnected]. If ctx ends first, Recv reports the context's error.
//
// Values are never returned out of send order: a pending value that has been
// overtaken by a later direct handoff is dropped rather than delivered.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	if r.closed.Load() {
		return zero, ErrClosed
	}
	s := r.s
	for {
		if v, ok := r.TryRecv(); ok {
			return v, nil
		}
		select {
		case it := <-s.ready:
			return r.accept(it), nil

		case <-s.wake:
			// A value was parked after we looked; check again.

		case <-s.sendersGone:
			if v, ok := r.TryRecv(); ok {
				return v, nil
			}
			return zero, ErrDisconnected

		case <-s.recvGone:
			return zero, ErrClosed

		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// accept records the receipt of an item handed over directly by a sender.
func (r *Receiver[T]) accept(it item[T]) T {
	s := r.s
	s.μ.Lock()
	s.last = max(s.last, it.seq)
	s.μ.Unlock()
	s.nReceived.Add(1)
	return it.value
}

// TryRecv takes the pending value, if there is one, and reports whether it
// did so. It does not block.
func (r *Receiver[T]) TryRecv() (T, bool) {
	var zero T
	s := r.s
	s.μ.Lock()
	defer s.μ.Unlock()
	if !s.hasPending || r.closed.Load() {
		return zero, false
	}
	it := s.pending
	s.pending, s.hasPending = item[T]{}, false
	if it.seq < s.last {
		s.nStale.Add(1)
		return zero, false
	}
	s.last = it.seq
	s.nReceived.Add(1)
	return it.value, true
}

// Close closes the receiver and releases any pending value. Subsequent sends
// report a *[SendError], and a Recv blocked concurrently reports [ErrClosed].
// If r is already closed, Close reports [ErrClosed].
func (r *Receiver[T]) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	s := r.s
	close(s.recvGone)

	s.μ.Lock()
	defer s.μ.Unlock()
	s.recvClosed = true
	s.pending, s.hasPending = item[T]{}, false
	return nil
}

// Stats returns a snapshot of the channel's counters.
func (r *Receiver[T]) Stats() Stats {
	s := r.s
	return Stats{
		Sent:     s.nSent.Load(),
		Direct:   s.nDirect.Load(),
		Buffered: s.nBuffered.Load(),
		Replaced: s.nReplaced.Load(),
		Received: s.nReceived.Load(),
		Stale:    s.nStale.Load(),
	}
}
