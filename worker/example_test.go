package worker_test

import (
	"context"
	"fmt"

	"github.com/creachadair/handoff/worker"
)

func ExampleStart() {
	started := make(chan struct{})
	gate := make(chan struct{})

	// A step that is slow to process its first value.
	t := worker.Start(func(_ context.Context, v int) error {
		if v == 1 {
			close(started)
			<-gate
		}
		fmt.Println("processing", v)
		return nil
	})

	t.Send(1)
	<-started

	// While the worker is busy, further sends overwrite one another and
	// never block.
	for v := 2; v <= 5; v++ {
		t.Send(v)
	}
	close(gate)

	// Close waits for the worker to finish with the latest value.
	if err := t.Close(); err != nil {
		fmt.Println("error:", err)
	}

	// Output:
	// processing 1
	// processing 5
}
