package hooks

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/output/dispatcher"
	"github.com/recontriage/recontriage/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*PrometheusHook)(nil)

// PrometheusHook exposes pipeline metrics for Prometheus scraping.
// It starts an HTTP server serving metrics at the configured path and
// updates counters as assets, findings, and errors flow through a run.
type PrometheusHook struct {
	server   *http.Server
	registry *prometheus.Registry
	opts     PrometheusOptions

	// Counters
	assetsTotal       *prometheus.CounterVec
	newAssetsTotal    *prometheus.CounterVec
	findingsTotal     *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	skippedLinesTotal prometheus.Counter

	// Gauges
	runDurationSeconds *prometheus.GaugeVec

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook behavior.
type PrometheusOptions struct {
	// Port for the metrics server (default: 9090).
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	// Target labels asset metrics with the domain under test.
	Target string
}

// NewPrometheusHook creates a Prometheus hook and starts its metrics
// server. The server runs until Close() is called.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Port == 0 {
		opts.Port = defaults.PortMetrics
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.Target == "" {
		opts.Target = "unknown"
	}

	// Custom registry keeps the default registry clean.
	hook := &PrometheusHook{
		registry: prometheus.NewRegistry(),
		opts:     opts,
	}

	if err := hook.initMetrics(); err != nil {
		return nil, fmt.Errorf("hooks: register metrics: %w", err)
	}
	hook.startServer()

	return hook, nil
}

// initMetrics creates and registers all Prometheus metrics.
func (h *PrometheusHook) initMetrics() error {
	h.assetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recontriage_assets_total",
			Help: "Total number of assets ingested from discovery",
		},
		[]string{"target", "source"},
	)

	h.newAssetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recontriage_new_assets_total",
			Help: "Total number of assets never seen in a previous run",
		},
		[]string{"target"},
	)

	h.findingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recontriage_findings_total",
			Help: "Total number of scanner findings",
		},
		[]string{"severity", "category"},
	)

	h.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recontriage_errors_total",
			Help: "Total number of pipeline errors",
		},
		[]string{"stage", "type"},
	)

	h.skippedLinesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recontriage_skipped_lines_total",
			Help: "Total number of malformed output lines dropped",
		},
	)

	h.runDurationSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recontriage_run_duration_seconds",
			Help: "Duration of the most recent run in seconds",
		},
		[]string{"target"},
	)

	collectors := []prometheus.Collector{
		h.assetsTotal,
		h.newAssetsTotal,
		h.findingsTotal,
		h.errorsTotal,
		h.skippedLinesTotal,
		h.runDurationSeconds,
	}

	for _, c := range collectors {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// startServer starts the HTTP server for metrics.
func (h *PrometheusHook) startServer() {
	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	h.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", h.opts.Port),
		Handler:      mux,
		ReadTimeout:  duration.MetricsRead,
		WriteTimeout: duration.MetricsWrite,
	}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("prometheus: metrics server error: %v", err)
		}
	}()
}

// OnEvent updates metrics from pipeline events.
func (h *PrometheusHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.AssetEvent:
		h.handleAsset(e)
	case *events.FindingEvent:
		h.handleFinding(e)
	case *events.ErrorEvent:
		h.handleError(e)
	case *events.SummaryEvent:
		h.handleSummary(e)
	}
	return nil
}

func (h *PrometheusHook) handleAsset(e *events.AssetEvent) {
	source := e.Record.Source
	if source == "" {
		source = "unknown"
	}
	h.assetsTotal.WithLabelValues(h.opts.Target, source).Inc()
	if e.Record.IsNew {
		h.newAssetsTotal.WithLabelValues(h.opts.Target).Inc()
	}
}

func (h *PrometheusHook) handleFinding(e *events.FindingEvent) {
	category := e.Finding.Category
	if category == "" {
		category = "Uncategorized"
	}
	h.findingsTotal.WithLabelValues(string(e.Finding.Severity), category).Inc()
}

func (h *PrometheusHook) handleError(e *events.ErrorEvent) {
	h.errorsTotal.WithLabelValues(e.Stage, e.ErrorType).Inc()
}

func (h *PrometheusHook) handleSummary(e *events.SummaryEvent) {
	h.runDurationSeconds.WithLabelValues(e.Target).Set(e.Timing.DurationSec)
	if e.Totals.SkippedLines > 0 {
		h.skippedLinesTotal.Add(float64(e.Totals.SkippedLines))
	}
}

// EventTypes returns the event types this hook handles.
func (h *PrometheusHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeAsset,
		events.EventTypeFinding,
		events.EventTypeError,
		events.EventTypeSummary,
	}
}

// Close shuts down the metrics server.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), duration.MetricsShutdown)
		defer cancel()
		return h.server.Shutdown(ctx)
	}
	return nil
}

// MetricsAddr returns the address where metrics are served.
func (h *PrometheusHook) MetricsAddr() string {
	return fmt.Sprintf("http://localhost:%d%s", h.opts.Port, h.opts.Path)
}
