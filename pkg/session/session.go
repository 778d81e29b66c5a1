// Package session holds the mutable state of one pipeline run. A
// RunState is created per invocation and handed through the stages:
// ingestion appends records, triage owns the selection, the scan stage
// attaches findings. Each stage is the single writer for its fields;
// the mutex exists for the ingestion window, where a display goroutine
// reads counts while the consumer is still appending.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/triage"
)

// Status tracks which pipeline stage a run is in.
type Status string

const (
	// StatusPending is the state before the first stage starts.
	StatusPending Status = "pending"
	// StatusDiscovering is set while the discovery engine streams.
	StatusDiscovering Status = "discovering"
	// StatusScanning is set while the vulnerability scanner runs.
	StatusScanning Status = "scanning"
	// StatusComplete is set after the last stage finished.
	StatusComplete Status = "complete"
	// StatusFailed is set when a stage aborted the run.
	StatusFailed Status = "failed"
)

// RunState is the explicit per-run state container. ID, Target and
// StartedAt are fixed at creation; everything else is guarded by the
// internal mutex.
type RunState struct {
	ID        string
	Target    string
	StartedAt time.Time

	mu        sync.Mutex
	status    Status
	records   []asset.Record
	newCount  int
	skipped   int
	findings  []finding.Finding
	selection *triage.Selection
}

// New creates a pending run for the given target with a fresh run ID.
func New(target string) *RunState {
	return &RunState{
		ID:        uuid.NewString(),
		Target:    target,
		StartedAt: time.Now(),
		status:    StatusPending,
		selection: triage.NewSelection(),
	}
}

// Status returns the current pipeline stage.
func (r *RunState) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// SetStatus advances the run to the given stage.
func (r *RunState) SetStatus(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
}

// AddRecord appends one record in arrival order. Called from the
// ingestion consumer while the display may be reading counts.
func (r *RunState) AddRecord(rec asset.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// SetRecords replaces the accumulated records wholesale. The ingestion
// stage calls this with the novelty-tagged result so the live-appended
// copies pick up their is_new marks.
func (r *RunState) SetRecords(records []asset.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make([]asset.Record, len(records))
	copy(r.records, records)
}

// Records returns a copy of the accumulated records in arrival order.
func (r *RunState) Records() []asset.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]asset.Record, len(r.records))
	copy(out, r.records)
	return out
}

// RecordCount returns the number of records accumulated so far.
func (r *RunState) RecordCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// SetIngestStats records the novelty and skip counts of the finished
// ingestion stage.
func (r *RunState) SetIngestStats(newCount, skipped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.newCount = newCount
	r.skipped = skipped
}

// IngestStats returns the novelty and skip counts.
func (r *RunState) IngestStats() (newCount, skipped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newCount, r.skipped
}

// AddFindings appends scan findings in arrival order.
func (r *RunState) AddFindings(fs ...finding.Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings = append(r.findings, fs...)
}

// SetFindings replaces the accumulated findings wholesale.
func (r *RunState) SetFindings(fs []finding.Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings = make([]finding.Finding, len(fs))
	copy(r.findings, fs)
}

// Findings returns a copy of the accumulated findings.
func (r *RunState) Findings() []finding.Finding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]finding.Finding, len(r.findings))
	copy(out, r.findings)
	return out
}

// Selection returns the triage selection owned by this run. The
// selection itself is not safe for concurrent use; only the triage
// stage writes it.
func (r *RunState) Selection() *triage.Selection {
	return r.selection
}

// Elapsed returns the wall-clock time since the run started.
func (r *RunState) Elapsed() time.Duration {
	return time.Since(r.StartedAt)
}
