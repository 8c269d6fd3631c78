package worker

import (
	"context"
	"fmt"
	"runtime/debug"
)

// PanicError is the error reported for a processing step that panicked.
type PanicError struct {
	Value any    // the value passed to panic
	Stack string // the stack of the panicking goroutine
}

// Error returns the panic value followed by the stack trace.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in step: %v\n\n%s", e.Value, e.Stack)
}

// call invokes step on v, converting a panic into a *PanicError.
func call[T any](ctx context.Context, step Step[T], v T) (err error) {
	defer func() {
		if x := recover(); x != nil {
			err = &PanicError{Value: x, Stack: string(debug.Stack())}
		}
	}()
	return step(ctx, v)
}
