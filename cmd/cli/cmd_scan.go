package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/recontriage/recontriage/pkg/cli"
	"github.com/recontriage/recontriage/pkg/config"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/input"
	"github.com/recontriage/recontriage/pkg/output/events"
	"github.com/recontriage/recontriage/pkg/session"
	"github.com/recontriage/recontriage/pkg/ui"
	"github.com/recontriage/recontriage/pkg/vulnscan"
)

func runScan() {
	scanFlags := flag.NewFlagSet("scan", flag.ExitOnError)
	var hosts input.StringSliceFlag
	scanFlags.Var(&hosts, "t", "Target host(s) - comma-separated or repeated")
	listFile := scanFlags.String("l", "", "File containing target hosts")
	stdinInput := scanFlags.Bool("stdin", false, "Read targets from stdin")
	configPath := scanFlags.String("config", "", "Config file path")
	scannerPath := scanFlags.String("scanner", "", "Vulnerability scanner binary (overrides config)")
	timeout := scanFlags.Duration("timeout", 0, "Scan timeout (overrides config)")
	noArchive := scanFlags.Bool("no-archive", false, "Skip archiving the run")

	of := &OutputFlags{}
	of.RegisterUIFlags(scanFlags)
	of.RegisterExportFlags(scanFlags)
	of.RegisterHookFlags(scanFlags)
	scanFlags.StringVar(&of.MinSeverity, "min-severity", "", "Export only findings at or above this severity")
	archivePath := scanFlags.String("archive", "", "Archive database path (overrides config)")

	scanFlags.Parse(os.Args[2:])
	of.ApplyUISettings()

	if _, err := parseMinSeverity(of.MinSeverity); err != nil {
		exitWithUsage(err.Error(), "recontriage scan -min-severity high ...")
	}

	cfg := mustLoadConfig(*configPath)
	if *scannerPath != "" {
		cfg.Scanner.Path = *scannerPath
	}
	if *timeout > 0 {
		cfg.Scanner.Timeout = config.Duration(*timeout)
	}
	if *archivePath != "" {
		cfg.Archive = *archivePath
	}
	if !*noArchive {
		of.ArchivePath = cfg.Archive
	}

	src := &input.Source{Hosts: hosts, ListFile: *listFile, Stdin: *stdinInput}
	targets, err := src.Targets()
	if err != nil {
		exitWithError("Failed to read targets: %v", err)
	}

	ui.PrintMiniBanner()
	ui.PrintSection("Vulnerability Scan")
	ui.PrintConfigLine("Targets", fmt.Sprintf("%d", len(targets)))
	ui.PrintConfigLine("Scanner", cfg.Scanner.Path)
	if of.JSONLExport != "" {
		ui.PrintConfigLine("Export", of.JSONLExport)
	}
	fmt.Fprintln(os.Stderr)

	st := session.New(firstOr(targets, "scan"))
	dc, err := of.InitDispatcher(st.ID, st.Target)
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Output setup: %v", err))
	}

	ctx, cancel := cli.SignalContext(duration.KillGrace)
	defer cancel()

	result := scanStage(ctx, dc, st, cfg, targets)
	if result == nil {
		// Empty selection: a no-op, not an error.
		dc.Close()
		ui.PrintWarning("No targets selected.")
		os.Exit(defaults.ExitSuccess)
	}

	dc.EmitSummary(ctx, events.SummaryTotals{
		Assets:   len(targets),
		Findings: len(result.Findings),
	}, result.Findings, st.StartedAt, "completed")
	dc.Close()

	printScanSummary(st, targets, result, of)
	os.Exit(defaults.ExitSuccess)
}

// scanStage runs the batch scan and publishes its findings. A nil
// result means the target list was empty; fatal errors exit inside.
func scanStage(ctx context.Context, dc *DispatcherContext, st *session.RunState, cfg *config.Config, targets []string) *vulnscan.Result {
	st.SetStatus(session.StatusScanning)
	dc.EmitStart(ctx, cfg.Scanner.Path, cfg.Scanner.Args)

	orch := vulnscan.New(vulnscan.Config{
		Path:    cfg.Scanner.Path,
		Args:    cfg.Scanner.Args,
		Timeout: cfg.Scanner.Timeout.Std(),
	})

	ui.PrintInfo(fmt.Sprintf("Scanning %d targets (batch, this can take a while)...", len(targets)))
	fmt.Fprintln(os.Stderr)

	result, err := orch.Scan(ctx, targets)
	if err != nil {
		if errors.Is(err, vulnscan.ErrNoTargets) {
			return nil
		}
		st.SetStatus(session.StatusFailed)
		failRun(ctx, dc, "scan", err)
	}

	st.AddFindings(result.Findings...)
	st.SetStatus(session.StatusComplete)
	dc.EmitFindings(ctx, result.Findings)

	for _, f := range result.Findings {
		ui.PrintFindingResult(string(f.Severity), f.TemplateID, f.Host, f.MatchedAt)
	}
	for _, le := range result.LineErrors {
		dc.EmitError(ctx, "scan", &le, false)
	}
	if n := len(result.LineErrors); n > 0 {
		ui.PrintWarning(fmt.Sprintf("%d scanner output lines could not be parsed", n))
	}
	return result
}

func printScanSummary(st *session.RunState, targets []string, result *vulnscan.Result, of *OutputFlags) {
	bySeverity := make(map[string]int)
	for sev, n := range finding.CountBySeverity(result.Findings) {
		bySeverity[string(sev)] = n
	}

	ui.PrintRunSummary(ui.RunSummary{
		Target:     st.Target,
		Assets:     len(targets),
		Findings:   len(result.Findings),
		BySeverity: bySeverity,
		Duration:   st.Elapsed(),
		ExitReason: "completed",
	})
	if of.JSONLExport != "" {
		ui.PrintSuccess("Findings exported to " + of.JSONLExport)
	}
	if of.ArchivePath != "" {
		ui.PrintSuccess("Run archived as " + st.ID)
	}
}
