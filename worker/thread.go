package worker

import (
	"context"
	"errors"

	"github.com/creachadair/handoff"
	"github.com/creachadair/handoff/metrics"
	"github.com/creachadair/handoff/trigger"
	"github.com/sirupsen/logrus"
)

// A Thread is a producer handle for a [Worker] running on its own goroutine.
// Its Send method never blocks and never fails, so producers are not slowed
// or faulted by a busy or departed worker; callers that want to observe what
// became of a value can use Offer instead.
//
// A Thread must be shut down with Close or Stop to release the goroutine.
type Thread[T any] struct {
	tx     *handoff.Sender[T]
	w      *Worker[T]
	cancel context.CancelFunc
	done   *trigger.Cond

	name string
	log  logrus.FieldLogger
	mx   *metrics.Registry

	err error // the result of Run; valid once done is set
}

// Start constructs a channel, starts a worker goroutine that applies step to
// the values sent to it, and returns the producer handle.
func Start[T any](step Step[T], opts ...Option) *Thread[T] {
	cfg := newConfig(opts)
	tx, rx := handoff.New[T]()
	ctx, cancel := context.WithCancel(cfg.ctx)
	t := &Thread[T]{
		tx:     tx,
		w:      New(rx, step, opts...),
		cancel: cancel,
		done:   trigger.New(),
		name:   cfg.name,
		log:    cfg.log.WithField("worker", cfg.name),
		mx:     cfg.metrics,
	}
	go func() {
		defer t.done.Set()
		t.err = t.w.Run(ctx)
	}()
	return t
}

// Send sends v to the worker without blocking. If the worker is busy, v
// replaces any value that is still waiting for it. Errors are discarded.
func (t *Thread[T]) Send(v T) {
	if _, err := t.Offer(v); err != nil {
		t.log.WithError(err).Debug("Dropped value")
	}
}

// Offer sends v to the worker without blocking, and reports how it was
// accepted. If the worker has terminated, Offer reports an error satisfying
// errors.Is(err, handoff.ErrDisconnected). After Close or Stop, Offer reports
// [handoff.ErrClosed].
func (t *Thread[T]) Offer(v T) (handoff.Delivery, error) {
	d, err := t.tx.Offer(v)
	if t.mx != nil {
		switch {
		case err == nil:
			t.mx.Sends.WithLabelValues(t.name, d.String()).Inc()
		case errors.Is(err, handoff.ErrDisconnected):
			t.mx.SendErrors.WithLabelValues(t.name, "disconnected").Inc()
		default:
			t.mx.SendErrors.WithLabelValues(t.name, "closed").Inc()
		}
	}
	return d, err
}

// Sender returns an additional producer handle for the worker. Values sent
// through it are not counted in metrics. The caller must close the handle;
// until it does, Close waits.
func (t *Thread[T]) Sender() *handoff.Sender[T] { return t.tx.Clone() }

// Close closes the producer handle and waits for the worker to finish.
// The worker processes the last value still pending, if any, before it
// stops. Close reports the error that ended the worker, or nil if it stopped
// because its senders closed. If t is already closed, Close reports
// [handoff.ErrClosed]. A Send or Offer racing with Close is either processed
// or refused with [handoff.ErrClosed]; it is never silently dropped.
func (t *Thread[T]) Close() error {
	if err := t.tx.Close(); err != nil {
		return err
	}
	<-t.done.Ready()
	t.cancel()
	return t.err
}

// Stop interrupts the worker and waits for it to finish. A step in progress
// sees its context end, and any pending value is discarded. Stop may be
// called more than once, and after Close.
func (t *Thread[T]) Stop() error {
	t.cancel()
	t.tx.Close() // OK if already closed
	<-t.done.Ready()
	if errors.Is(t.err, context.Canceled) {
		return nil
	}
	return t.err
}

// Done returns a channel that is closed when the worker has terminated.
func (t *Thread[T]) Done() <-chan struct{} { return t.done.Ready() }

// State reports the current state of the worker.
func (t *Thread[T]) State() State { return t.w.State() }

// WaitState blocks until the worker is in state s or ctx ends.
func (t *Thread[T]) WaitState(ctx context.Context, s State) error { return t.w.WaitState(ctx, s) }
