package worker

import (
	"context"

	"github.com/creachadair/handoff/metrics"
	"github.com/sirupsen/logrus"
)

// An Option configures a [Worker] or a [Thread].
type Option func(*config)

type config struct {
	name    string
	log     logrus.FieldLogger
	metrics *metrics.Registry
	ctx     context.Context
}

func newConfig(opts []Option) *config {
	cfg := &config{
		name: "worker",
		log:  logrus.StandardLogger(),
		ctx:  context.Background(),
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithName sets the name used to label log entries and metrics. The default
// is "worker".
func WithName(name string) Option { return func(c *config) { c.name = name } }

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option { return func(c *config) { c.log = log } }

// WithMetrics enables reporting to reg. By default no metrics are reported.
func WithMetrics(reg *metrics.Registry) Option { return func(c *config) { c.metrics = reg } }

// WithContext sets the parent context of a [Thread]. When ctx ends, the
// worker stops as if [Thread.Stop] had been called. It has no effect on a
// [Worker], which takes its context from Run.
func WithContext(ctx context.Context) Option { return func(c *config) { c.ctx = ctx } }
