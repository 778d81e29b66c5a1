package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/cli"
	"github.com/recontriage/recontriage/pkg/config"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/history"
	"github.com/recontriage/recontriage/pkg/ingest"
	"github.com/recontriage/recontriage/pkg/output/events"
	"github.com/recontriage/recontriage/pkg/session"
	"github.com/recontriage/recontriage/pkg/ui"
)

func runRecon() {
	reconFlags := flag.NewFlagSet("recon", flag.ExitOnError)
	domain := reconFlags.String("d", "", "Target domain to discover (required)")
	configPath := reconFlags.String("config", "", "Config file path")
	enginePath := reconFlags.String("engine", "", "Discovery engine binary (overrides config)")
	historyPath := reconFlags.String("history", "", "Asset history file (overrides config)")
	timeout := reconFlags.Duration("timeout", 0, "Discovery timeout (overrides config)")

	of := &OutputFlags{}
	of.RegisterUIFlags(reconFlags)
	of.RegisterExportFlags(reconFlags)
	of.RegisterHookFlags(reconFlags)
	reconFlags.BoolVar(&of.OnlyNew, "only-new", false, "Export only assets new since the last run")

	reconFlags.Parse(os.Args[2:])
	of.ApplyUISettings()

	if *domain == "" {
		exitWithUsage("Target domain is required", "recontriage recon -d example.com")
	}

	cfg := mustLoadConfig(*configPath)
	if *enginePath != "" {
		cfg.Engine.Path = *enginePath
	}
	if *historyPath != "" {
		cfg.History = *historyPath
	}
	if *timeout > 0 {
		cfg.Engine.Timeout = config.Duration(*timeout)
	}

	ui.PrintMiniBanner()
	ui.PrintSection("Asset Discovery")
	ui.PrintConfigLine("Target", *domain)
	ui.PrintConfigLine("Engine", cfg.Engine.Path)
	ui.PrintConfigLine("History", cfg.History)
	if of.JSONLExport != "" {
		ui.PrintConfigLine("Export", of.JSONLExport)
	}
	fmt.Fprintln(os.Stderr)

	st := session.New(*domain)
	dc, err := of.InitDispatcher(st.ID, *domain)
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Output setup: %v", err))
	}

	ctx, cancel := cli.SignalContext(duration.KillGrace)
	defer cancel()

	result := reconStage(ctx, dc, st, cfg, of)

	dc.EmitSummary(ctx, events.SummaryTotals{
		Assets:       len(result.Records),
		NewAssets:    result.NewCount,
		SkippedLines: result.Skipped,
	}, nil, st.StartedAt, "completed")
	dc.Close()

	ui.PrintRunSummary(ui.RunSummary{
		Target:     *domain,
		Assets:     len(result.Records),
		NewAssets:  result.NewCount,
		Skipped:    result.Skipped,
		Duration:   st.Elapsed(),
		ExitReason: "completed",
	})
	if of.JSONLExport != "" {
		ui.PrintSuccess("Results exported to " + of.JSONLExport)
	}
	os.Exit(defaults.ExitSuccess)
}

// reconStage drives one discovery run against the session target and
// returns the tagged result. Fatal stage errors exit the process; a
// persistence failure is reported and the run continues.
func reconStage(ctx context.Context, dc *DispatcherContext, st *session.RunState, cfg *config.Config, of *OutputFlags) *ingest.Result {
	st.SetStatus(session.StatusDiscovering)
	dc.EmitStart(ctx, cfg.Engine.Path, cfg.Engine.Args)

	progress := ui.NewStreamProgress(ui.StreamProgressConfig{
		Phase: "discovering " + st.Target,
		Mode:  progressMode(of),
	})
	progress.Start()

	ingestor := ingest.New(ingest.Config{
		EnginePath: cfg.Engine.Path,
		Args:       cfg.Engine.Args,
		History:    history.NewStore(cfg.History),
		Timeout:    cfg.Engine.Timeout.Std(),
	})

	result, err := ingestor.Run(ctx, st.Target, func(rec asset.Record) {
		st.AddRecord(rec)
		progress.AddAsset(false)
		ui.PrintAssetResult(rec.Identifier, rec.StatusCode, rec.Title, rec.TechStack, false)
	})
	if err != nil {
		progress.Stop()
		st.SetStatus(session.StatusFailed)
		failRun(ctx, dc, "recon", err)
	}

	progress.SetNew(result.NewCount)
	progress.Stop()
	fmt.Fprintln(os.Stderr)

	st.SetRecords(result.Records)
	st.SetIngestStats(result.NewCount, result.Skipped)
	st.SetStatus(session.StatusComplete)

	// Events carry the novelty-tagged records, so the export is
	// published after the diff rather than live during the stream.
	dc.EmitAssets(ctx, result.Records)

	if result.PersistErr != nil {
		dc.EmitError(ctx, "recon", result.PersistErr, false)
		ui.PrintWarning(fmt.Sprintf("History not persisted: %v", result.PersistErr))
	}
	if result.Skipped > 0 {
		ui.PrintInfo(fmt.Sprintf("Skipped %d malformed output lines", result.Skipped))
	}
	return result
}

// progressMode picks the stream progress display for the current UI
// flags.
func progressMode(of *OutputFlags) ui.ProgressMode {
	if of.Silent {
		return ui.ProgressSilent
	}
	return ui.DefaultProgressMode()
}
