//go:build unix

package cli

import (
	"context"
	"syscall"
)

// watchSignals reports terminal resizes (SIGWINCH) and color scheme change
// notifications (SIGUSR1).
func watchSignals(ctx context.Context) (resize, schemeChange <-chan struct{}) {
	return relay(ctx, syscall.SIGWINCH), relay(ctx, syscall.SIGUSR1)
}
