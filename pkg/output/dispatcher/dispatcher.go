// Package dispatcher routes pipeline events to registered writers and
// hooks. Writers persist events (JSONL export, archive), while hooks
// react to them in real time (structured logging, metrics, tracing).
//
// Every stage of a run publishes through the dispatcher, so consumers
// never couple to the stage that produced an event.
package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/recontriage/recontriage/pkg/output/events"
)

// Writer persists events to an output destination.
type Writer interface {
	// Write writes a single event.
	Write(event events.Event) error

	// Flush forces any buffered events out.
	Flush() error

	// Close flushes and releases the writer's resources.
	Close() error

	// SupportsEvent reports whether the writer handles this event type.
	SupportsEvent(eventType events.EventType) bool
}

// Hook reacts to events as they happen. Hooks are for live integrations
// such as metrics counters or trace spans, not for persistence.
type Hook interface {
	// OnEvent is called for each matching event.
	OnEvent(ctx context.Context, event events.Event) error

	// EventTypes returns the event types this hook wants.
	// Nil or empty means all events.
	EventTypes() []events.EventType
}

// Dispatcher fans events out to writers and hooks.
// It is safe for concurrent use.
type Dispatcher struct {
	mu      sync.RWMutex
	writers []Writer
	hooks   []Hook

	async  bool
	hookWg sync.WaitGroup
	closed atomic.Bool
}

// Config configures dispatcher behavior.
type Config struct {
	// Async runs hooks in goroutines instead of inline.
	// Close blocks until all async hooks have finished.
	Async bool
}

// New creates an event dispatcher.
func New(cfg Config) *Dispatcher {
	return &Dispatcher{async: cfg.Async}
}

// RegisterWriter adds a writer. Events reach it when its
// SupportsEvent filter matches.
func (d *Dispatcher) RegisterWriter(w Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writers = append(d.writers, w)
}

// RegisterHook adds a hook. Events reach it when its EventTypes
// filter matches.
func (d *Dispatcher) RegisterHook(h Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, h)
}

// Dispatch sends an event to every matching writer and hook. A failing
// consumer never blocks the others, so Dispatch reports nil even when
// individual writers or hooks error. After Close it is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, event events.Event) error {
	if d.closed.Load() {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	// Re-check under the lock: Close sets the flag before acquiring
	// the write lock, and hookWg.Add must never race its Wait.
	if d.closed.Load() {
		return nil
	}

	for _, w := range d.writers {
		if !w.SupportsEvent(event.EventType()) {
			continue
		}
		_ = w.Write(event)
	}

	for _, h := range d.hooks {
		if !hookWants(h, event.EventType()) {
			continue
		}
		if d.async {
			d.hookWg.Add(1)
			go func(hook Hook) {
				defer d.hookWg.Done()
				_ = hook.OnEvent(ctx, event)
			}(h)
		} else {
			_ = h.OnEvent(ctx, event)
		}
	}

	return nil
}

// hookWants reports whether the hook's filter matches the event type.
func hookWants(h Hook, eventType events.EventType) bool {
	types := h.EventTypes()
	if len(types) == 0 {
		return true
	}
	for _, et := range types {
		if et == eventType {
			return true
		}
	}
	return false
}

// Flush flushes all registered writers without closing them.
func (d *Dispatcher) Flush() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, w := range d.writers {
		_ = w.Flush()
	}
	return nil
}

// Close waits for in-flight async hooks, then flushes and closes all
// writers. Further Dispatch calls are ignored. Close is idempotent.
func (d *Dispatcher) Close() error {
	if d.closed.Swap(true) {
		return nil
	}

	// The write lock excludes every Dispatch, so no hookWg.Add can
	// arrive once Wait starts.
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hookWg.Wait()

	for _, w := range d.writers {
		_ = w.Flush()
		_ = w.Close()
	}
	return nil
}
