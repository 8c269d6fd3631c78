package handoff_test

import (
	"context"
	"fmt"

	"github.com/creachadair/handoff"
)

func ExampleNew() {
	tx, rx := handoff.New[string]()
	ctx := context.Background()

	// Nobody is receiving yet, so each send replaces the one before it.
	for _, v := range []string{"apple", "pear", "plum"} {
		d, _ := tx.Offer(v)
		fmt.Println(v, d)
	}

	// The receiver sees only the latest value.
	v, _ := rx.Recv(ctx)
	fmt.Println("received", v)

	// When the last sender closes, the receiver is told so.
	tx.Close()
	_, err := rx.Recv(ctx)
	fmt.Println(err)

	// Output:
	// apple buffered
	// pear replaced
	// plum replaced
	// received plum
	// channel is disconnected
}
