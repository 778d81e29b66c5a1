package hooks

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recontriage/recontriage/pkg/archive"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/output/events"
)

func newTestArchiveHook(t *testing.T) (*ArchiveHook, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	hook, err := NewArchiveHook(ArchiveOptions{
		Path:   path,
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)
	return hook, path
}

func summaryFor(runID, target string, findings int) *events.SummaryEvent {
	started := time.Unix(1740800000, 0).UTC()
	return &events.SummaryEvent{
		BaseEvent: events.NewBase(events.EventTypeSummary, runID),
		Target:    target,
		Totals:    events.SummaryTotals{Assets: 5, NewAssets: 2, Findings: findings},
		Timing: events.SummaryTiming{
			StartedAt:   started,
			CompletedAt: started.Add(90 * time.Second),
			DurationSec: 90,
		},
		ExitReason: "completed",
	}
}

func TestArchiveHookPersistsOnSummary(t *testing.T) {
	hook, path := newTestArchiveHook(t)
	ctx := context.Background()

	require.NoError(t, hook.OnEvent(ctx, events.NewFinding("run-1", finding.Finding{
		Template: "Exposed Panel", TemplateID: "panel-detect",
		Severity: finding.High, Host: "api.example.com",
	})))
	require.NoError(t, hook.OnEvent(ctx, events.NewFinding("run-1", finding.Finding{
		Template: "TLS 1.0 Enabled", TemplateID: "tls-version",
		Severity: finding.Low, Host: "old.example.com",
	})))
	require.NoError(t, hook.OnEvent(ctx, summaryFor("run-1", "example.com", 2)))
	require.NoError(t, hook.Close())

	store, err := archive.Open(path)
	require.NoError(t, err)
	defer store.Close()

	run, err := store.RunByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "example.com", run.Target)
	assert.Equal(t, 5, run.Assets)
	assert.Equal(t, 2, run.NewAssets)
	assert.Equal(t, 2, run.Findings)
	assert.Equal(t, "completed", run.ExitReason)

	stored, err := store.FindingsByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Exposed Panel", stored[0].Template)
}

func TestArchiveHookSeparatesRuns(t *testing.T) {
	hook, path := newTestArchiveHook(t)
	ctx := context.Background()

	require.NoError(t, hook.OnEvent(ctx, events.NewFinding("run-a", finding.Finding{
		Template: "A", TemplateID: "a", Host: "a.example.com",
	})))
	require.NoError(t, hook.OnEvent(ctx, events.NewFinding("run-b", finding.Finding{
		Template: "B", TemplateID: "b", Host: "b.example.com",
	})))
	require.NoError(t, hook.OnEvent(ctx, summaryFor("run-a", "a-target", 1)))
	require.NoError(t, hook.Close())

	store, err := archive.Open(path)
	require.NoError(t, err)
	defer store.Close()

	stored, err := store.FindingsByRun(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "A", stored[0].Template)

	// run-b never summarized, so nothing of it was persisted.
	_, err = store.RunByID(ctx, "run-b")
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestArchiveHookNoFindings(t *testing.T) {
	hook, path := newTestArchiveHook(t)
	ctx := context.Background()

	require.NoError(t, hook.OnEvent(ctx, summaryFor("run-1", "example.com", 0)))
	require.NoError(t, hook.Close())

	store, err := archive.Open(path)
	require.NoError(t, err)
	defer store.Close()

	run, err := store.RunByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 0, run.Findings)
}

func TestArchiveHookSaveFailureIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "archive.db")
	hook, err := NewArchiveHook(ArchiveOptions{
		Path:   path,
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
	})
	require.NoError(t, err)

	// Closing the store first forces the summary-time save to fail.
	require.NoError(t, hook.Close())

	assert.NoError(t, hook.OnEvent(context.Background(), summaryFor("run-1", "example.com", 0)))
	assert.Contains(t, buf.String(), "failed to archive run")
}

func TestArchiveHookEventTypes(t *testing.T) {
	hook, _ := newTestArchiveHook(t)
	defer hook.Close()

	assert.ElementsMatch(t, []events.EventType{
		events.EventTypeFinding,
		events.EventTypeSummary,
	}, hook.EventTypes())
}
