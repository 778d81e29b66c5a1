package cli

import (
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestSignalContextCancelOnInterrupt(t *testing.T) {
	sigChan := make(chan os.Signal, 1)
	ctx, cancel := signalContext(5*time.Second, sigChan, nil)
	defer cancel()

	sigChan <- os.Interrupt

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after signal")
	}
}

func TestSignalContextManualCancel(t *testing.T) {
	sigChan := make(chan os.Signal, 1)
	ctx, cancel := signalContext(5*time.Second, sigChan, nil)

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after manual cancel")
	}
}

func TestSignalContextSecondSignalForcesExit(t *testing.T) {
	sigChan := make(chan os.Signal, 2)
	var exitCode atomic.Int32
	exitCode.Store(-1)

	ctx, cancel := signalContext(5*time.Second, sigChan, func(code int) {
		exitCode.Store(int32(code))
	})
	defer cancel()

	sigChan <- os.Interrupt
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after first signal")
	}

	sigChan <- os.Interrupt

	deadline := time.After(2 * time.Second)
	for exitCode.Load() != 1 {
		select {
		case <-deadline:
			t.Fatal("exit was not forced by the second signal")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestSignalContextGraceExpiryDoesNotExit(t *testing.T) {
	sigChan := make(chan os.Signal, 1)
	var exitCalled atomic.Bool

	_, cancel := signalContext(50*time.Millisecond, sigChan, func(int) {
		exitCalled.Store(true)
	})
	defer cancel()

	sigChan <- os.Interrupt
	time.Sleep(200 * time.Millisecond)

	if exitCalled.Load() {
		t.Error("exit must only fire on a second signal, not grace expiry")
	}
}
