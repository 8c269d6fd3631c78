package metrics_test

import (
	"testing"

	"github.com/creachadair/handoff/metrics"
	"github.com/creachadair/mds/mtest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)

	m.Sends.WithLabelValues("a", "direct").Inc()
	m.Sends.WithLabelValues("b", "replaced").Add(2)
	m.State.WithLabelValues("a").Set(1)

	if got := testutil.ToFloat64(m.Sends.WithLabelValues("b", "replaced")); got != 2 {
		t.Errorf("Sends: got %v, want 2", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: unexpected error: %v", err)
	}
	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{"handoff_sends_total", "handoff_worker_state"} {
		if !names[want] {
			t.Errorf("Gather: missing metric %q (got %v)", want, names)
		}
	}

	// The metrics can only be registered once per registerer.
	mtest.MustPanicf(t, func() { metrics.NewRegistry(reg) },
		"NewRegistry did not panic on duplicate registration")
}
