// Package lifecycle ties a command's work to process termination signals.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// WithSignals returns a copy of parent that is cancelled on SIGINT or SIGTERM.
// Calling the returned CancelFunc releases the signal handler.
//
// Precondition: logger must be non-nil.
// Postcondition: the returned context is done after a signal, after cancel, or
// when parent is done.
func WithSignals(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	start := time.Now()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Info("received signal, cancelling",
				zap.String("signal", sig.String()),
				zap.Duration("uptime", time.Since(start)),
			)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
