// Package cli provides shared command-line plumbing for recontriage
// commands. Today that is interrupt handling: every command that
// supervises an external scanner runs under a SignalContext so a
// Ctrl-C kills the child process instead of orphaning it.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalContext returns a context cancelled on SIGINT/SIGTERM. The
// cancellation propagates through the process supervisor, which
// terminates any running scanner child. A second signal within
// gracePeriod skips the graceful path and exits immediately.
//
// Usage:
//
//	ctx, cancel := cli.SignalContext(duration.KillGrace)
//	defer cancel()
func SignalContext(gracePeriod time.Duration) (context.Context, context.CancelFunc) {
	return signalContext(gracePeriod, nil, nil)
}

// signalContext is the testable core. sigChan, if non-nil, replaces
// the real signal channel; exitFn, if non-nil, replaces os.Exit.
func signalContext(gracePeriod time.Duration, sigChan chan os.Signal, exitFn func(int)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	ownChannel := sigChan == nil
	if ownChannel {
		sigChan = make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	}
	if exitFn == nil {
		exitFn = os.Exit
	}

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Interrupt received, terminating scanners...")
			cancel()

			// A second signal during the grace period forces exit.
			select {
			case <-sigChan:
				exitFn(1)
			case <-time.After(gracePeriod):
			}
		case <-ctx.Done():
		}
		if ownChannel {
			signal.Stop(sigChan)
		}
	}()

	return ctx, cancel
}
