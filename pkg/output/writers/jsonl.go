// Package writers provides dispatcher.Writer implementations that
// persist pipeline events. The JSONL writer is the canonical export
// format: one event per line, parseable independently, friendly to jq
// and downstream streaming consumers.
package writers

import (
	"io"
	"sync"

	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/jsonutil"
	"github.com/recontriage/recontriage/pkg/output/dispatcher"
	"github.com/recontriage/recontriage/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*JSONLWriter)(nil)

// JSONLWriter writes events as newline-delimited JSON.
type JSONLWriter struct {
	w       io.Writer
	mu      sync.Mutex
	opts    JSONLOptions
	encoder *jsonutil.Encoder
}

// JSONLOptions configures the JSONL writer behavior.
type JSONLOptions struct {
	// OnlyNew drops asset events for hosts already known from
	// previous runs.
	OnlyNew bool

	// MinSeverity drops finding events below this severity.
	// Empty means no severity filtering.
	MinSeverity finding.Severity
}

// NewJSONLWriter creates a JSONL writer on w.
// The writer is safe for concurrent use.
func NewJSONLWriter(w io.Writer, opts JSONLOptions) *JSONLWriter {
	return &JSONLWriter{
		w:       w,
		opts:    opts,
		encoder: jsonutil.NewStreamEncoder(w),
	}
}

// Write writes one event as a single JSON line.
// Returns nil for events filtered out by options.
func (jw *JSONLWriter) Write(event events.Event) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.opts.OnlyNew {
		if ae, ok := event.(*events.AssetEvent); ok && !ae.Record.IsNew {
			return nil
		}
	}

	if jw.opts.MinSeverity != "" {
		if fe, ok := event.(*events.FindingEvent); ok {
			if fe.Finding.Severity.Score() < jw.opts.MinSeverity.Score() {
				return nil
			}
		}
	}

	return jw.encoder.Encode(event)
}

// Flush is a no-op; every event is written as soon as it arrives.
func (jw *JSONLWriter) Flush() error {
	return nil
}

// Close closes the underlying writer when it is an io.Closer.
func (jw *JSONLWriter) Close() error {
	if closer, ok := jw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent returns true for all event types; the export captures
// the complete run stream.
func (jw *JSONLWriter) SupportsEvent(_ events.EventType) bool {
	return true
}
