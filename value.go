package handoff

import (
	"context"
	"sync"
)

// A Value is a mutable cell holding a single value of type T that can be
// watched for changes by multiple goroutines. A zero Value is ready for use,
// but must not be copied after its first use.
type Value[T any] struct {
	μ     sync.Mutex
	x     T
	ready chan struct{} // closed and cleared by Set; lazily created by waiters
}

// NewValue creates a new Value with the given initial value.
func NewValue[T any](init T) *Value[T] { return &Value[T]{x: init} }

// Set updates the value stored in v and wakes any goroutines blocked in
// WaitFunc, even if the stored value does not change.
func (v *Value[T]) Set(newValue T) {
	v.μ.Lock()
	defer v.μ.Unlock()
	v.x = newValue
	if v.ready != nil {
		close(v.ready)
		v.ready = nil
	}
}

// Get returns the current value stored in v.
func (v *Value[T]) Get() T {
	v.μ.Lock()
	defer v.μ.Unlock()
	return v.x
}

// changed returns the current value and a channel that is closed by the next
// call to Set.
func (v *Value[T]) changed() (T, <-chan struct{}) {
	v.μ.Lock()
	defer v.μ.Unlock()
	if v.ready == nil {
		v.ready = make(chan struct{})
	}
	return v.x, v.ready
}

// WaitFunc blocks until the value in v satisfies ok, and returns that value.
// If the current value already satisfies ok, WaitFunc returns it at once.
// If ctx ends first, WaitFunc returns the latest value and the context error.
//
// Values set and replaced between two checks are not seen by ok.
func (v *Value[T]) WaitFunc(ctx context.Context, ok func(T) bool) (T, error) {
	for {
		cur, ready := v.changed()
		if ok(cur) {
			return cur, nil
		}
		select {
		case <-ctx.Done():
			return v.Get(), ctx.Err()
		case <-ready:
		}
	}
}
