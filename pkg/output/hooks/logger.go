// Package hooks provides dispatcher.Hook implementations for live
// integrations: structured logging, Prometheus metrics, OpenTelemetry
// traces, and the run archive.
package hooks

import (
	"context"
	"log/slog"

	"github.com/recontriage/recontriage/pkg/output/dispatcher"
	"github.com/recontriage/recontriage/pkg/output/events"
)

// orDefault returns l if non-nil, otherwise slog.Default().
func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// Compile-time interface check.
var _ dispatcher.Hook = (*LoggerHook)(nil)

// LoggerHook emits a structured log line per event. Asset events log at
// debug to keep large discovery runs readable.
type LoggerHook struct {
	logger *slog.Logger
}

// NewLoggerHook creates a logging hook. A nil logger uses slog.Default().
func NewLoggerHook(logger *slog.Logger) *LoggerHook {
	return &LoggerHook{logger: orDefault(logger)}
}

// OnEvent logs the event with fields appropriate to its type.
func (h *LoggerHook) OnEvent(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.RunStartEvent:
		h.logger.InfoContext(ctx, "run started",
			slog.String("run_id", e.RunID()),
			slog.String("target", e.Target),
			slog.String("tool", e.Tool))
	case *events.AssetEvent:
		h.logger.DebugContext(ctx, "asset discovered",
			slog.String("run_id", e.RunID()),
			slog.String("subdomain", e.Record.Identifier),
			slog.String("source", e.Record.Source),
			slog.Bool("new", e.Record.IsNew))
	case *events.FindingEvent:
		h.logger.InfoContext(ctx, "finding",
			slog.String("run_id", e.RunID()),
			slog.String("template_id", e.Finding.TemplateID),
			slog.String("severity", string(e.Finding.Severity)),
			slog.String("host", e.Finding.Host),
			slog.String("category", e.Finding.Category))
	case *events.ErrorEvent:
		level := slog.LevelWarn
		if e.Fatal {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "pipeline error",
			slog.String("run_id", e.RunID()),
			slog.String("stage", e.Stage),
			slog.String("type", e.ErrorType),
			slog.String("message", e.Message))
	case *events.SummaryEvent:
		h.logger.InfoContext(ctx, "run summary",
			slog.String("run_id", e.RunID()),
			slog.String("target", e.Target),
			slog.Int("assets", e.Totals.Assets),
			slog.Int("new_assets", e.Totals.NewAssets),
			slog.Int("skipped_lines", e.Totals.SkippedLines),
			slog.Int("findings", e.Totals.Findings),
			slog.Float64("duration_sec", e.Timing.DurationSec),
			slog.String("exit_reason", e.ExitReason))
	}
	return nil
}

// EventTypes returns nil; the logger receives all events.
func (h *LoggerHook) EventTypes() []events.EventType {
	return nil
}
