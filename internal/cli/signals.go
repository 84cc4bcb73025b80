package cli

import (
	"context"
	"os"
	"os/signal"
)

// relay turns deliveries of sig into events on the returned channel until
// ctx is done.
func relay(ctx context.Context, sig os.Signal) <-chan struct{} {
	in := make(chan os.Signal, 1)
	signal.Notify(in, sig)

	out := make(chan struct{})
	go func() {
		defer signal.Stop(in)
		for {
			select {
			case <-ctx.Done():
				return
			case <-in:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
