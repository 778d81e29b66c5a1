// Package ingest runs the discovery engine and accumulates its streamed
// asset records in arrival order.
//
// A producer goroutine decodes the child's stdout onto a buffered
// channel and closes it when the stream ends, for any reason; the
// caller's flow does blocking receives until that close. The close is
// the only termination signal needed, and it cannot fire before the
// pipe has drained, so tail output arriving between the child's exit
// and the final read is never dropped.
//
// On successful completion the run's identifiers are diffed against the
// history store, fresh ones are tagged, and the store is merged. A
// failed or cancelled run never commits to history.
package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/history"
	"github.com/recontriage/recontriage/pkg/stream"
	"github.com/recontriage/recontriage/pkg/supervisor"
)

// Config configures the ingestor.
type Config struct {
	// EnginePath is the discovery engine binary
	// (default: "./bin/recon-engine").
	EnginePath string

	// Args are extra engine arguments; the target domain is appended
	// after them.
	Args []string

	// History is the cross-run identifier store. Nil disables novelty
	// tagging and merging.
	History *history.Store

	// Timeout bounds the discovery run (default: 30m).
	Timeout time.Duration

	// Logger for structured logging (default: slog.Default()).
	Logger *slog.Logger
}

// Result is the outcome of one discovery run.
type Result struct {
	// Records in arrival order. Duplicates from the engine are kept.
	Records []asset.Record

	// NewCount is the number of identifiers absent from history.
	NewCount int

	// Skipped counts malformed output lines that were dropped.
	Skipped int

	// Stderr is the engine's captured standard error.
	Stderr string

	Duration time.Duration

	// PersistErr reports a history load or merge failure. Non-fatal:
	// the in-memory tagging above it is still complete.
	PersistErr error
}

// Ingestor drives discovery runs. It is reusable across targets.
type Ingestor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Ingestor, applying defaults for unset fields.
func New(cfg Config) *Ingestor {
	if cfg.EnginePath == "" {
		cfg.EnginePath = defaults.EngineBinary
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.Discovery
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{cfg: cfg, logger: logger}
}

// Run launches the engine against target and accumulates its records.
// onRecord, when non-nil, is called for each record as it arrives, on
// the caller's flow, so it may touch display state.
//
// Records decoded before a failure are retained in the partial Result.
// Error identity: *supervisor.LaunchError (engine missing),
// *supervisor.ExitError (non-zero exit, stderr attached),
// *stream.ToolError (engine reported a structured failure), or the
// context error on cancellation.
func (ing *Ingestor) Run(ctx context.Context, target string, onRecord func(asset.Record)) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, ing.cfg.Timeout)
	defer cancel()

	args := append(append([]string{}, ing.cfg.Args...), target)
	sup := supervisor.New(supervisor.Config{
		Path:   ing.cfg.EnginePath,
		Args:   args,
		Logger: ing.logger,
	})

	ing.logger.Info("starting discovery",
		slog.String("target", target),
		slog.String("engine", ing.cfg.EnginePath))

	start := time.Now()
	proc, err := sup.Start(ctx)
	if err != nil {
		return nil, err
	}

	records := make(chan asset.Record, defaults.ChannelMedium)
	dec := stream.NewDecoder(proc.Stdout())

	// decodeErr is written before the close and read only after the
	// channel drains, so the close orders the two.
	var decodeErr error
	go func() {
		defer close(records)
		for {
			rec, err := dec.Next()
			if err != nil {
				if err != io.EOF {
					decodeErr = err
				}
				return
			}
			records <- rec
		}
	}()

	result := &Result{}
	for rec := range records {
		result.Records = append(result.Records, rec)
		if onRecord != nil {
			onRecord(rec)
		}
	}
	result.Skipped = dec.Skipped()

	// A tool-reported failure ends the logical stream even though the
	// engine may keep running; kill it so Wait returns now instead of
	// at the engine's leisure.
	var toolErr *stream.ToolError
	if errors.As(decodeErr, &toolErr) {
		cancel()
	}

	waitErr := proc.Wait()
	result.Stderr = proc.Stderr()
	result.Duration = time.Since(start)

	if toolErr != nil {
		ing.logger.Warn("engine reported failure",
			slog.String("kind", toolErr.Kind),
			slog.String("message", toolErr.Message))
		return result, decodeErr
	}
	if decodeErr != nil && waitErr == nil {
		return result, decodeErr
	}
	if waitErr != nil {
		return result, waitErr
	}

	ing.tagAndMerge(result)

	ing.logger.Info("discovery complete",
		slog.String("target", target),
		slog.Int("records", len(result.Records)),
		slog.Int("new", result.NewCount),
		slog.Int("skipped_lines", result.Skipped),
		slog.Duration("took", result.Duration))
	return result, nil
}

// tagAndMerge computes novelty against history and merges the run's
// identifiers back. Persistence failures land in Result.PersistErr;
// the tagging itself always completes.
func (ing *Ingestor) tagAndMerge(result *Result) {
	if ing.cfg.History == nil {
		return
	}

	ids := asset.Identifiers(result.Records)
	fresh, loadErr := ing.cfg.History.Diff(ids)
	asset.MarkNew(result.Records, fresh)
	result.NewCount = len(fresh)

	if loadErr != nil {
		result.PersistErr = loadErr
	}
	if err := ing.cfg.History.Merge(ids); err != nil {
		result.PersistErr = err
	}

	if result.PersistErr != nil {
		ing.logger.Warn("history persistence failed",
			slog.String("error", result.PersistErr.Error()))
	}
}
