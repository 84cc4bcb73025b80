//go:build !unix

package cli

import "context"

// watchSignals has no event sources on platforms without SIGWINCH; the
// preview is rendered once and stays until interrupted.
func watchSignals(ctx context.Context) (resize, schemeChange <-chan struct{}) {
	return nil, nil
}
