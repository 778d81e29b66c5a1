package hooks

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/output/dispatcher"
	"github.com/recontriage/recontriage/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*OTelHook)(nil)

// OTelHook exports run telemetry to an OpenTelemetry collector. Each
// run becomes one root span; findings and errors are recorded as span
// events, and the summary sets final span attributes and status.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	mu       sync.Mutex
	rootSpan trace.Span
	closed   bool
}

// OTelOptions configures the OpenTelemetry hook behavior.
type OTelOptions struct {
	// Endpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	Endpoint string

	// ServiceName for traces (default: "recontriage").
	ServiceName string

	// Insecure disables TLS on the exporter connection.
	Insecure bool

	// Headers are additional headers for the OTLP exporter.
	Headers map[string]string
}

// NewOTelHook creates an OpenTelemetry hook exporting to the configured
// endpoint. Connection failures surface on export, not here, so a
// collector outage never blocks a run.
func NewOTelHook(opts OTelOptions) (*OTelHook, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.Endpoint == "" {
		opts.Endpoint = fmt.Sprintf("localhost:%d", defaults.PortOTLP)
	}

	grpcOpts := []grpc.DialOption{}
	if opts.Insecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(grpcOpts...),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration.TraceExport)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	// Avoid merging with resource.Default to prevent schema conflicts.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "pipeline"),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)

	return &OTelHook{
		opts:           opts,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(defaults.ToolName + "/pipeline"),
	}, nil
}

// OnEvent exports telemetry for pipeline events.
func (h *OTelHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.RunStartEvent:
		h.handleStart(ctx, e)
	case *events.FindingEvent:
		h.handleFinding(e)
	case *events.ErrorEvent:
		h.handleError(e)
	case *events.SummaryEvent:
		h.handleSummary(e)
	case *events.CompleteEvent:
		h.handleComplete()
	}
	return nil
}

// handleStart opens the root span for the run.
func (h *OTelHook) handleStart(ctx context.Context, start *events.RunStartEvent) {
	_, span := h.tracer.Start(ctx, defaults.ToolName+".run",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("run_id", start.RunID()),
			attribute.String("target", start.Target),
			attribute.String("tool", start.Tool),
			attribute.StringSlice("args", start.Args),
		),
	)
	h.rootSpan = span
}

// handleFinding records a finding as a span event.
func (h *OTelHook) handleFinding(e *events.FindingEvent) {
	if h.rootSpan == nil {
		return
	}
	h.rootSpan.AddEvent("finding", trace.WithAttributes(
		attribute.String("template_id", e.Finding.TemplateID),
		attribute.String("severity", string(e.Finding.Severity)),
		attribute.String("host", e.Finding.Host),
		attribute.String("category", e.Finding.Category),
	))
}

// handleError records pipeline errors; fatal ones mark the span.
func (h *OTelHook) handleError(e *events.ErrorEvent) {
	if h.rootSpan == nil {
		return
	}
	h.rootSpan.AddEvent("pipeline_error", trace.WithAttributes(
		attribute.String("stage", e.Stage),
		attribute.String("type", e.ErrorType),
		attribute.String("message", e.Message),
		attribute.Bool("fatal", e.Fatal),
	))
	if e.Fatal {
		h.rootSpan.SetStatus(codes.Error, e.Message)
	}
}

// handleSummary sets final attributes and span status.
func (h *OTelHook) handleSummary(e *events.SummaryEvent) {
	if h.rootSpan == nil {
		return
	}
	h.rootSpan.SetAttributes(
		attribute.String("target", e.Target),
		attribute.Int("totals.assets", e.Totals.Assets),
		attribute.Int("totals.new_assets", e.Totals.NewAssets),
		attribute.Int("totals.skipped_lines", e.Totals.SkippedLines),
		attribute.Int("totals.findings", e.Totals.Findings),
		attribute.Float64("timing.duration_sec", e.Timing.DurationSec),
		attribute.String("exit_reason", e.ExitReason),
	)
	if e.ExitReason == "completed" {
		h.rootSpan.SetStatus(codes.Ok, "run completed")
	} else {
		h.rootSpan.SetStatus(codes.Error, e.ExitReason)
	}
}

// handleComplete ends the root span.
func (h *OTelHook) handleComplete() {
	if h.rootSpan == nil {
		return
	}
	h.rootSpan.End()
	h.rootSpan = nil
}

// EventTypes returns the event types this hook handles.
func (h *OTelHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeRunStart,
		events.EventTypeFinding,
		events.EventTypeError,
		events.EventTypeSummary,
		events.EventTypeComplete,
	}
}

// Close ends any active span and shuts down the tracer provider,
// flushing pending telemetry.
func (h *OTelHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.rootSpan != nil {
		h.rootSpan.End()
		h.rootSpan = nil
	}

	if h.tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), duration.TraceShutdown)
		defer cancel()
		if err := h.tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("hooks: shutdown tracer provider: %w", err)
		}
	}
	return nil
}

// Endpoint returns the OTLP endpoint in use.
func (h *OTelHook) Endpoint() string {
	return h.opts.Endpoint
}
