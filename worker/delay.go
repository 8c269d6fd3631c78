package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Delay is a placeholder processing step that simulates expensive work: it
// waits for a fixed duration and then logs a summary of the value.
//
// The zero Delay waits for no time, summarizes values with fmt, and logs to
// the logrus standard logger.
type Delay[T any] struct {
	Duration time.Duration
	Summary  func(T) string     // if nil, uses fmt.Sprint
	Clock    clockwork.Clock    // if nil, uses the real clock
	Logger   logrus.FieldLogger // if nil, uses logrus.StandardLogger()
}

// Process implements a [Step]. It reports the context's error if ctx ends
// before the delay has elapsed, and in that case logs nothing further.
func (d *Delay[T]) Process(ctx context.Context, v T) error {
	log := d.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	clk := d.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}

	log.Info("Thinking...")
	tmr := clk.NewTimer(d.Duration)
	defer tmr.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tmr.Chan():
	}

	var summary string
	if d.Summary != nil {
		summary = d.Summary(v)
	} else {
		summary = fmt.Sprint(v)
	}
	log.WithField("elapsed", d.Duration).Infof("Processed %s", summary)
	return nil
}
