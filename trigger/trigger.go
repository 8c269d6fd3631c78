// Package trigger implements a one-shot condition that goroutines can wait on
// by selecting on a channel.
package trigger

import "sync"

// Cond is a condition shared by multiple goroutines. The Ready method
// returns a channel that is closed when the condition is set. Once set, a
// Cond stays set.
//
// A zero Cond is ready for use, and is not set, but must not be copied after
// any of its methods have been called.
type Cond struct {
	μ      sync.Mutex
	ch     chan struct{} // lazily allocated by Ready or Set
	active bool
}

// New constructs a new Cond that is not set.
func New() *Cond { return new(Cond) }

// Ready returns a channel that is closed when c is set. If c is already set
// when Ready is called, the returned channel is already closed.
func (c *Cond) Ready() <-chan struct{} {
	c.μ.Lock()
	defer c.μ.Unlock()
	if c.ch == nil {
		c.ch = make(chan struct{})
	}
	return c.ch
}

// Set sets c, waking every goroutine waiting on a Ready channel. If c is
// already set, Set has no effect.
func (c *Cond) Set() {
	c.μ.Lock()
	defer c.μ.Unlock()
	if c.active {
		return
	}
	if c.ch == nil {
		c.ch = make(chan struct{})
	}
	close(c.ch)
	c.active = true
}
