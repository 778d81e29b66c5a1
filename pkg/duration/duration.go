// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.ScanBatch)
//	Interval: duration.ProgressInterval,
//
// DO NOT use hardcoded time.Duration values like `30 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// EXTERNAL PROCESS TIMEOUTS
// ============================================================================
//
// Use these to bound the lifetime of supervised scanner processes.
// ============================================================================

const (
	// Discovery bounds a full discovery-engine run (30min). Subdomain
	// enumeration over a large target routinely takes tens of minutes.
	Discovery = 30 * time.Minute

	// ScanBatch bounds a second-stage vulnerability scan batch (15min).
	ScanBatch = 15 * time.Minute

	// KillGrace is how long a child gets between SIGTERM and SIGKILL
	// when a run is cancelled (3s).
	KillGrace = 3 * time.Second
)

// ============================================================================
// UI/STREAMING INTERVALS
// ============================================================================
//
// Use these for progress updates, streaming output, and UI refresh rates.
// ============================================================================

const (
	// ProgressInterval is the minimum gap between streaming progress
	// lines while ingesting live output (1s).
	ProgressInterval = 1 * time.Second

	// RenderInterval is the redraw rate for interactive progress (250ms).
	RenderInterval = 250 * time.Millisecond
)

// ============================================================================
// HOOK/INTEGRATION TIMEOUTS
// ============================================================================
//
// Use these for the optional metrics and tracing integrations.
// ============================================================================

const (
	// MetricsRead is the read timeout for the metrics scrape server (5s).
	MetricsRead = 5 * time.Second

	// MetricsWrite is the write timeout for the metrics scrape server (10s).
	MetricsWrite = 10 * time.Second

	// MetricsShutdown bounds graceful shutdown of the scrape server (5s).
	MetricsShutdown = 5 * time.Second

	// TraceExport bounds an OTLP trace export attempt (10s).
	TraceExport = 10 * time.Second

	// TraceShutdown bounds tracer provider shutdown on close (5s).
	TraceShutdown = 5 * time.Second
)

// ============================================================================
// STORE/ARCHIVE TIMEOUTS
// ============================================================================
//
// Use these for local persistence operations.
// ============================================================================

const (
	// ArchiveQuery bounds a single archive database operation (10s).
	ArchiveQuery = 10 * time.Second
)
