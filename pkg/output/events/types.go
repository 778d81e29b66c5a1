// Package events defines the typed pipeline events flowing through the
// output dispatcher. Writers persist them (JSONL exports), hooks react
// to them (metrics, tracing, logging).
//
// BaseEvent is embedded in every concrete event type and carries the
// envelope: event type, wall-clock timestamp, and owning run ID.
package events

import "time"

// EventType represents the type of pipeline event.
type EventType string

const (
	// EventTypeRunStart indicates a discovery or scan run has started.
	EventTypeRunStart EventType = "run_start"
	// EventTypeAsset indicates one discovered asset record.
	EventTypeAsset EventType = "asset"
	// EventTypeFinding indicates one vulnerability finding.
	EventTypeFinding EventType = "finding"
	// EventTypeError indicates an error surfaced during the run.
	EventTypeError EventType = "error"
	// EventTypeSummary indicates the final run summary.
	EventTypeSummary EventType = "summary"
	// EventTypeComplete indicates the run has completed.
	EventTypeComplete EventType = "complete"
)

// Event is the base interface for all pipeline events.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	RunID() string
}

// BaseEvent contains common fields for all events.
// It is designed to be embedded in specific event types.
type BaseEvent struct {
	Type EventType `json:"type"`
	Time time.Time `json:"timestamp"`
	Run  string    `json:"run_id"`
}

// NewBase stamps an event envelope with the current time.
func NewBase(t EventType, runID string) BaseEvent {
	return BaseEvent{Type: t, Time: time.Now(), Run: runID}
}

// EventType returns the type of this event.
func (e BaseEvent) EventType() EventType { return e.Type }

// Timestamp returns when this event occurred.
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// RunID returns the identifier of the run that produced this event.
func (e BaseEvent) RunID() string { return e.Run }
