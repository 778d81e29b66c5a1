// Shared output and observability flag handling for all commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/output/dispatcher"
	"github.com/recontriage/recontriage/pkg/output/events"
	"github.com/recontriage/recontriage/pkg/output/hooks"
	"github.com/recontriage/recontriage/pkg/output/writers"
	"github.com/recontriage/recontriage/pkg/taxonomy"
	"github.com/recontriage/recontriage/pkg/ui"
)

// OutputFlags groups the output-related flags shared by the pipeline
// commands: the JSONL export, UI behavior, and the optional metrics,
// tracing, and archive integrations.
type OutputFlags struct {
	// Export
	JSONLExport string
	OnlyNew     bool
	MinSeverity string

	// UI
	Silent  bool
	NoColor bool
	Verbose bool

	// Hooks
	MetricsPort  int
	OTelEndpoint string
	OTelInsecure bool
	ArchivePath  string
}

// RegisterUIFlags registers the terminal behavior flags.
func (o *OutputFlags) RegisterUIFlags(fs *flag.FlagSet) {
	fs.BoolVar(&o.Silent, "silent", false, "Suppress banner, progress, and result lines")
	fs.BoolVar(&o.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&o.Verbose, "verbose", false, "Enable debug logging")
}

// RegisterExportFlags registers the JSONL export flag.
func (o *OutputFlags) RegisterExportFlags(fs *flag.FlagSet) {
	fs.StringVar(&o.JSONLExport, "o", "", "Export results to JSONL file")
}

// RegisterHookFlags registers the optional observability flags.
func (o *OutputFlags) RegisterHookFlags(fs *flag.FlagSet) {
	fs.IntVar(&o.MetricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port for the run")
	fs.StringVar(&o.OTelEndpoint, "otel-endpoint", "", "OTLP gRPC endpoint for trace export")
	fs.BoolVar(&o.OTelInsecure, "otel-insecure", false, "Disable TLS on the OTLP exporter connection")
}

// ApplyUISettings propagates the UI flags to the ui package and sets
// the process-wide structured logger. Call once, right after Parse.
func (o *OutputFlags) ApplyUISettings() {
	ui.SetSilent(o.Silent)
	ui.SetNoColor(o.NoColor)

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// DispatcherContext bundles the event dispatcher with the resources it
// owns for one run: the export file and any hooks that need closing.
// A nil context is valid; every method on it is a no-op.
type DispatcherContext struct {
	disp   *dispatcher.Dispatcher
	runID  string
	target string

	promHook *hooks.PrometheusHook
	otelHook *hooks.OTelHook
	archHook *hooks.ArchiveHook
}

// InitDispatcher builds the dispatcher for a run: the logger hook
// always, the JSONL export, metrics, tracing, and archive when their
// flags are set. The returned context must be Closed. On error the
// partial context is still returned so already-registered consumers
// get released.
func (o *OutputFlags) InitDispatcher(runID, target string) (*DispatcherContext, error) {
	dc := &DispatcherContext{
		disp:   dispatcher.New(dispatcher.Config{}),
		runID:  runID,
		target: target,
	}
	dc.disp.RegisterHook(hooks.NewLoggerHook(slog.Default()))

	if o.JSONLExport != "" {
		f, err := os.Create(o.JSONLExport)
		if err != nil {
			return dc, fmt.Errorf("create export file: %w", err)
		}
		// The writer owns the file; dispatcher Close closes it.
		dc.disp.RegisterWriter(writers.NewJSONLWriter(f, writers.JSONLOptions{
			OnlyNew:     o.OnlyNew,
			MinSeverity: finding.Severity(o.MinSeverity),
		}))
	}

	if o.MetricsPort > 0 {
		hook, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{
			Port:   o.MetricsPort,
			Target: target,
		})
		if err != nil {
			return dc, fmt.Errorf("metrics hook: %w", err)
		}
		dc.promHook = hook
		dc.disp.RegisterHook(hook)
	}

	if o.OTelEndpoint != "" {
		hook, err := hooks.NewOTelHook(hooks.OTelOptions{
			Endpoint: o.OTelEndpoint,
			Insecure: o.OTelInsecure,
		})
		if err != nil {
			return dc, fmt.Errorf("otel hook: %w", err)
		}
		dc.otelHook = hook
		dc.disp.RegisterHook(hook)
	}

	if o.ArchivePath != "" {
		hook, err := hooks.NewArchiveHook(hooks.ArchiveOptions{
			Path:   o.ArchivePath,
			Logger: slog.Default(),
		})
		if err != nil {
			return dc, fmt.Errorf("archive hook: %w", err)
		}
		dc.archHook = hook
		dc.disp.RegisterHook(hook)
	}

	return dc, nil
}

// EmitStart publishes the run-start event.
func (dc *DispatcherContext) EmitStart(ctx context.Context, tool string, args []string) {
	if dc == nil {
		return
	}
	_ = dc.disp.Dispatch(ctx, &events.RunStartEvent{
		BaseEvent: events.NewBase(events.EventTypeRunStart, dc.runID),
		Target:    dc.target,
		Tool:      tool,
		Args:      args,
	})
}

// EmitAssets publishes one asset event per record. Called after
// novelty tagging so exports carry the is_new marks.
func (dc *DispatcherContext) EmitAssets(ctx context.Context, records []asset.Record) {
	if dc == nil {
		return
	}
	for _, rec := range records {
		_ = dc.disp.Dispatch(ctx, events.NewAsset(dc.runID, rec))
	}
}

// EmitFindings publishes one finding event per finding.
func (dc *DispatcherContext) EmitFindings(ctx context.Context, findings []finding.Finding) {
	if dc == nil {
		return
	}
	for _, f := range findings {
		_ = dc.disp.Dispatch(ctx, events.NewFinding(dc.runID, f))
	}
}

// EmitError publishes an error event.
func (dc *DispatcherContext) EmitError(ctx context.Context, stage string, err error, fatal bool) {
	if dc == nil {
		return
	}
	_ = dc.disp.Dispatch(ctx, &events.ErrorEvent{
		BaseEvent: events.NewBase(events.EventTypeError, dc.runID),
		Stage:     stage,
		ErrorType: classifyError(err),
		Message:   err.Error(),
		Fatal:     fatal,
	})
}

// EmitSummary publishes the final run summary, deriving the severity
// and category breakdowns from the finding list.
func (dc *DispatcherContext) EmitSummary(ctx context.Context, totals events.SummaryTotals, findings []finding.Finding, started time.Time, exitReason string) {
	if dc == nil {
		return
	}

	bySeverity := make(map[string]int)
	for sev, n := range finding.CountBySeverity(findings) {
		bySeverity[string(sev)] = n
	}
	byCategory := make(map[string]int)
	for _, cc := range taxonomy.Summarize(findings) {
		byCategory[cc.Category] = cc.Count
	}

	now := time.Now()
	_ = dc.disp.Dispatch(ctx, &events.SummaryEvent{
		BaseEvent:  events.NewBase(events.EventTypeSummary, dc.runID),
		Target:     dc.target,
		Totals:     totals,
		BySeverity: bySeverity,
		ByCategory: byCategory,
		Timing: events.SummaryTiming{
			StartedAt:   started,
			CompletedAt: now,
			DurationSec: now.Sub(started).Seconds(),
		},
		ExitReason: exitReason,
	})
}

// Close publishes the completion event, closes the dispatcher, and
// releases every hook the context owns. Safe to call more than once.
func (dc *DispatcherContext) Close() {
	if dc == nil {
		return
	}
	_ = dc.disp.Dispatch(context.Background(), &events.CompleteEvent{
		BaseEvent: events.NewBase(events.EventTypeComplete, dc.runID),
	})
	_ = dc.disp.Close()

	if dc.promHook != nil {
		_ = dc.promHook.Close()
	}
	if dc.otelHook != nil {
		_ = dc.otelHook.Close()
	}
	if dc.archHook != nil {
		_ = dc.archHook.Close()
	}
}
