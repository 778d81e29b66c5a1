// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for runtime defaults.
//
// Usage:
//
//	cfg.HistoryPath = defaults.HistoryFile
//	ch := make(chan asset.Record, defaults.ChannelMedium)
//
// DO NOT hardcode values like `Port: 9090` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

import "fmt"

// Version is the current recontriage version
const Version = "1.2.0"

// ToolName is the canonical binary and service name
const ToolName = "recontriage"

// ============================================================================
// EXTERNAL TOOLS
// ============================================================================
//
// Paths and environment overrides for the external binaries the
// pipeline drives. Config values take precedence over these.
// ============================================================================

const (
	// EngineBinary is the default discovery engine path
	EngineBinary = "./bin/recon-engine"

	// EngineBinaryEnv overrides the discovery engine path
	EngineBinaryEnv = "RECON_BIN_PATH"

	// ScannerBinary is the default vulnerability scanner, resolved via PATH
	ScannerBinary = "nuclei"

	// ScannerBinaryEnv overrides the vulnerability scanner path
	ScannerBinaryEnv = "RECON_SCANNER_PATH"
)

// ============================================================================
// DATA FILES
// ============================================================================
//
// Default on-disk locations. All are relative to the working directory
// unless overridden by flags or config.
// ============================================================================

const (
	// HistoryFile is the cross-run asset history store
	HistoryFile = "asset_history.json"

	// ArchiveFile is the SQLite run archive
	ArchiveFile = "recontriage.db"

	// ReportPrefix is prepended to generated report file names
	ReportPrefix = "report_"
)

// ============================================================================
// BUFFER SIZES
// ============================================================================
//
// Use these for byte buffers and line scanners.
// ============================================================================

const (
	// BufferTiny is for small reads (1KB)
	BufferTiny = 1 * 1024

	// BufferSmall is for typical reads (4KB)
	BufferSmall = 4 * 1024

	// BufferLarge is the initial line scanner buffer (64KB)
	BufferLarge = 64 * 1024

	// BufferMax is the maximum accepted line length (10MB)
	BufferMax = 10 * 1024 * 1024
)

// ============================================================================
// CHANNEL SIZES
// ============================================================================
//
// Use these for buffered channels.
// ============================================================================

const (
	// ChannelTiny is for small buffers (10)
	ChannelTiny = 10

	// ChannelSmall is for typical buffers (100)
	ChannelSmall = 100

	// ChannelMedium is for record streaming buffers (1000)
	ChannelMedium = 1000
)

// ============================================================================
// PORTS
// ============================================================================
//
// Default ports for optional observability endpoints.
// ============================================================================

const (
	// PortMetrics serves Prometheus metrics
	PortMetrics = 9090

	// PortOTLP is the OpenTelemetry collector gRPC port
	PortOTLP = 4317
)

// UserAgent returns the recontriage user agent with context
func UserAgent(context string) string {
	if context == "" {
		return ToolName + "/" + Version
	}
	return fmt.Sprintf("%s/%s (%s)", ToolName, Version, context)
}
