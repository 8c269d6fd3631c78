// Package metrics provides Prometheus instrumentation for handoff workers.
//
// A Registry is created once per Prometheus registerer and shared by every
// worker that reports to it; workers are told apart by the "worker" label.
//
//	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
//	t := worker.Start(step, worker.WithName("layout"), worker.WithMetrics(reg))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the metric namespace used by all handoff metrics.
const Namespace = "handoff"

// Registry holds the metric vectors reported by handoff workers.
type Registry struct {
	// Producer side
	Sends      *prometheus.CounterVec // labels: worker, delivery
	SendErrors *prometheus.CounterVec // labels: worker, reason

	// Consumer side
	Processed       *prometheus.CounterVec   // labels: worker
	Failures        *prometheus.CounterVec   // labels: worker, kind
	ProcessDuration *prometheus.HistogramVec // labels: worker
	State           *prometheus.GaugeVec     // labels: worker
}

// NewRegistry creates the handoff metrics and registers them with reg.
// It panics if the metrics are already registered with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		Sends: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "sends_total",
				Help:      "Total number of values accepted by a send, by delivery kind",
			},
			[]string{"worker", "delivery"},
		),

		SendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "send_errors_total",
				Help:      "Total number of sends that were rejected",
			},
			[]string{"worker", "reason"},
		),

		Processed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "processed_total",
				Help:      "Total number of values processed by a worker",
			},
			[]string{"worker"},
		),

		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "process_failures_total",
				Help:      "Total number of processing steps that failed, by kind",
			},
			[]string{"worker", "kind"},
		),

		ProcessDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "process_duration_seconds",
				Help:      "Time spent in the processing step",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"worker"},
		),

		State: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "worker_state",
				Help:      "Current worker state (0 waiting, 1 processing, 2 terminated)",
			},
			[]string{"worker"},
		),
	}
}
