package events

import (
	"time"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/finding"
)

// RunStartEvent is emitted when a discovery or scan run begins.
type RunStartEvent struct {
	BaseEvent
	Target string   `json:"target"`
	Tool   string   `json:"tool"`
	Args   []string `json:"args,omitempty"`
}

// AssetEvent carries one discovered asset record as it is ingested.
type AssetEvent struct {
	BaseEvent
	Record asset.Record `json:"record"`
}

// NewAsset wraps a record in its event envelope.
func NewAsset(runID string, record asset.Record) *AssetEvent {
	return &AssetEvent{BaseEvent: NewBase(EventTypeAsset, runID), Record: record}
}

// FindingEvent carries one normalized vulnerability finding.
type FindingEvent struct {
	BaseEvent
	Finding finding.Finding `json:"finding"`
}

// NewFinding wraps a finding in its event envelope.
func NewFinding(runID string, f finding.Finding) *FindingEvent {
	return &FindingEvent{BaseEvent: NewBase(EventTypeFinding, runID), Finding: f}
}

// ErrorEvent is emitted when an error surfaces during a run. Fatal marks
// errors that ended the run; persistence and per-line parse errors are
// reported non-fatal.
type ErrorEvent struct {
	BaseEvent
	Stage     string `json:"stage"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
	Fatal     bool   `json:"fatal"`
}

// SummaryTotals contains aggregate counts for a completed run.
type SummaryTotals struct {
	Assets       int `json:"assets"`
	NewAssets    int `json:"new_assets"`
	SkippedLines int `json:"skipped_lines"`
	Findings     int `json:"findings"`
	Suppressed   int `json:"suppressed,omitempty"`
}

// SummaryTiming contains timing information for a completed run.
type SummaryTiming struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationSec float64   `json:"duration_sec"`
}

// SummaryEvent represents the final run summary.
type SummaryEvent struct {
	BaseEvent
	Target     string         `json:"target"`
	Totals     SummaryTotals  `json:"totals"`
	BySeverity map[string]int `json:"by_severity,omitempty"`
	ByCategory map[string]int `json:"by_category,omitempty"`
	Timing     SummaryTiming  `json:"timing"`
	ExitReason string         `json:"exit_reason"`
}

// CompleteEvent indicates a run has completed and no further events
// will follow for its run ID.
type CompleteEvent struct {
	BaseEvent
}
