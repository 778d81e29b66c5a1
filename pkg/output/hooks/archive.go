package hooks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/recontriage/recontriage/pkg/archive"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/output/dispatcher"
	"github.com/recontriage/recontriage/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*ArchiveHook)(nil)

// ArchiveHook persists completed runs to the local SQLite archive.
// Finding events are buffered per run and written together with the
// run metadata when the summary arrives, so a run that never completes
// leaves no partial archive entry. Archive failures are logged and
// swallowed; persistence must never abort a scan.
type ArchiveHook struct {
	store  *archive.Store
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string][]finding.Finding
}

// ArchiveOptions configures the archive hook.
type ArchiveOptions struct {
	// Path is the SQLite database file (default: defaults.ArchiveFile).
	Path string

	// Logger for structured logging (default: slog.Default()).
	Logger *slog.Logger
}

// NewArchiveHook opens the archive database and returns the hook.
func NewArchiveHook(opts ArchiveOptions) (*ArchiveHook, error) {
	if opts.Path == "" {
		opts.Path = defaults.ArchiveFile
	}
	store, err := archive.Open(opts.Path)
	if err != nil {
		return nil, err
	}
	return &ArchiveHook{
		store:   store,
		logger:  orDefault(opts.Logger),
		pending: make(map[string][]finding.Finding),
	}, nil
}

// OnEvent buffers findings and persists the run when its summary
// arrives.
func (h *ArchiveHook) OnEvent(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.FindingEvent:
		h.mu.Lock()
		h.pending[e.RunID()] = append(h.pending[e.RunID()], e.Finding)
		h.mu.Unlock()
	case *events.SummaryEvent:
		h.persist(ctx, e)
	}
	return nil
}

// EventTypes returns the event types this hook handles.
func (h *ArchiveHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeFinding,
		events.EventTypeSummary,
	}
}

// Close releases the archive database handle.
func (h *ArchiveHook) Close() error {
	return h.store.Close()
}

func (h *ArchiveHook) persist(ctx context.Context, summary *events.SummaryEvent) {
	h.mu.Lock()
	findings := h.pending[summary.RunID()]
	delete(h.pending, summary.RunID())
	h.mu.Unlock()

	run := archive.Run{
		ID:          summary.RunID(),
		Target:      summary.Target,
		StartedAt:   summary.Timing.StartedAt,
		CompletedAt: summary.Timing.CompletedAt,
		Assets:      summary.Totals.Assets,
		NewAssets:   summary.Totals.NewAssets,
		Findings:    summary.Totals.Findings,
		ExitReason:  summary.ExitReason,
	}

	ctx, cancel := context.WithTimeout(ctx, duration.ArchiveQuery)
	defer cancel()

	if err := h.store.SaveRun(ctx, run, findings); err != nil {
		h.logger.Warn("failed to archive run",
			slog.String("run_id", run.ID),
			slog.String("error", err.Error()))
		return
	}
	h.logger.Info("run archived",
		slog.String("run_id", run.ID),
		slog.String("target", run.Target),
		slog.Int("findings", len(findings)))
}
