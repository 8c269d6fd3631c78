// Package worker runs a processing step over the values received from a
// [handoff] channel on a dedicated goroutine.
//
// A [Thread] is the handle held by producers: it owns the channel and the
// worker goroutine, and exposes non-blocking sends. Values sent while the
// worker is busy are coalesced, so the step only ever sees the freshest value
// available when it becomes free.
//
//	t := worker.Start(func(ctx context.Context, tree *snapshot.Tree) error {
//		return rebuild(ctx, tree)
//	})
//	defer t.Close()
//
//	t.Send(tree) // never blocks
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creachadair/handoff"
	"github.com/creachadair/handoff/metrics"
	"github.com/sirupsen/logrus"
)

// State is the state of a [Worker].
type State int

const (
	Waiting    State = iota // blocked waiting for a value
	Processing              // running the step on a value
	Terminated              // finished; no further values are processed
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Processing:
		return "processing"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Step is a processing operation applied by a worker to each value it
// receives. It may be arbitrarily slow, and should return promptly when ctx
// ends. An error or panic from a step is logged and the worker continues.
type Step[T any] func(ctx context.Context, v T) error

// A Worker applies a [Step] to the values received from a channel.
type Worker[T any] struct {
	rx    *handoff.Receiver[T]
	step  Step[T]
	name  string
	log   logrus.FieldLogger
	mx    *metrics.Registry
	state *handoff.Value[State]
}

// New constructs a worker that applies step to the values received by rx.
// The worker takes ownership of rx. Call Run to start it.
func New[T any](rx *handoff.Receiver[T], step Step[T], opts ...Option) *Worker[T] {
	cfg := newConfig(opts)
	return &Worker[T]{
		rx:    rx,
		step:  step,
		name:  cfg.name,
		log:   cfg.log.WithField("worker", cfg.name),
		mx:    cfg.metrics,
		state: handoff.NewValue(Waiting),
	}
}

// Run receives values and applies the step to each in turn until every
// sender has closed or ctx ends. When Run returns, the worker is Terminated
// and its receiver is closed, so further sends report an error.
//
// Run reports nil if it stopped because the senders closed, otherwise the
// error that ended it. Run must be called at most once.
func (w *Worker[T]) Run(ctx context.Context) error {
	defer func() {
		w.rx.Close()
		w.setState(Terminated)
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.setState(Waiting)
		v, err := w.rx.Recv(ctx)
		if errors.Is(err, handoff.ErrDisconnected) {
			w.log.Debug("All senders closed; stopping")
			return nil
		} else if err != nil {
			w.log.WithError(err).Debug("Receive failed; stopping")
			return err
		}

		w.setState(Processing)
		w.process(ctx, v)
	}
}

func (w *Worker[T]) process(ctx context.Context, v T) {
	start := time.Now()
	err := call(ctx, w.step, v)
	if w.mx != nil {
		w.mx.ProcessDuration.WithLabelValues(w.name).Observe(time.Since(start).Seconds())
	}

	var perr *PanicError
	switch {
	case err == nil:
		w.count("")
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		w.log.WithError(err).Debug("Step interrupted")
	case errors.As(err, &perr):
		w.log.WithField("stack", perr.Stack).Errorf("Step panicked: %v", perr.Value)
		w.count("panic")
	default:
		w.log.WithError(err).Error("Step failed")
		w.count("error")
	}
}

// count records the outcome of a step. An empty kind means success.
func (w *Worker[T]) count(kind string) {
	if w.mx == nil {
		return
	} else if kind == "" {
		w.mx.Processed.WithLabelValues(w.name).Inc()
	} else {
		w.mx.Failures.WithLabelValues(w.name, kind).Inc()
	}
}

func (w *Worker[T]) setState(s State) {
	w.state.Set(s)
	if w.mx != nil {
		w.mx.State.WithLabelValues(w.name).Set(float64(s))
	}
}

// State reports the current state of w.
func (w *Worker[T]) State() State { return w.state.Get() }

// WaitState blocks until w is in state s or ctx ends. A state that is entered
// and left again between checks may be missed, except Terminated, which is
// never left.
func (w *Worker[T]) WaitState(ctx context.Context, s State) error {
	_, err := w.state.WaitFunc(ctx, func(cur State) bool { return cur == s })
	return err
}
