package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/cli"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/input"
	"github.com/recontriage/recontriage/pkg/output/events"
	"github.com/recontriage/recontriage/pkg/report"
	"github.com/recontriage/recontriage/pkg/session"
	"github.com/recontriage/recontriage/pkg/triage"
	"github.com/recontriage/recontriage/pkg/ui"
)

// runPipeline drives the whole two-stage workflow on one RunState:
// discovery, triage selection, the vulnerability scan, and report
// assembly.
func runPipeline() {
	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	domain := runFlags.String("d", "", "Target domain (required)")
	configPath := runFlags.String("config", "", "Config file path")
	enginePath := runFlags.String("engine", "", "Discovery engine binary (overrides config)")
	scannerPath := runFlags.String("scanner", "", "Vulnerability scanner binary (overrides config)")
	historyPath := runFlags.String("history", "", "Asset history file (overrides config)")
	tech := runFlags.String("tech", "", "Scan only assets whose tech stack matches this token")
	newOnly := runFlags.Bool("new-only", false, "Scan only assets new since the last run")
	sensitiveOnly := runFlags.Bool("sensitive-only", false, "Scan only assets flagged as sensitive surface")
	var suppress input.StringSliceFlag
	runFlags.Var(&suppress, "suppress", "Host(s) to suppress as false positives")
	suppressFile := runFlags.String("suppress-file", "", "File of hosts to suppress, one per line")
	templatePath := runFlags.String("template", "", "Custom report template (overrides config)")
	minSeverity := runFlags.String("min-severity", "", "Drop findings below this severity (overrides config)")
	reportDir := runFlags.String("report-dir", "", "Report output directory (overrides config)")
	noArchive := runFlags.Bool("no-archive", false, "Skip archiving the run")

	of := &OutputFlags{}
	of.RegisterUIFlags(runFlags)
	of.RegisterExportFlags(runFlags)
	of.RegisterHookFlags(runFlags)

	runFlags.Parse(os.Args[2:])
	of.ApplyUISettings()

	if *domain == "" {
		exitWithUsage("Target domain is required", "recontriage run -d example.com")
	}

	cfg := mustLoadConfig(*configPath)
	if *enginePath != "" {
		cfg.Engine.Path = *enginePath
	}
	if *scannerPath != "" {
		cfg.Scanner.Path = *scannerPath
	}
	if *historyPath != "" {
		cfg.History = *historyPath
	}
	if *templatePath != "" {
		cfg.Report.Template = *templatePath
	}
	if *minSeverity != "" {
		cfg.Report.MinSeverity = *minSeverity
	}
	if *reportDir != "" {
		cfg.Report.OutputDir = *reportDir
	}
	minSev, err := parseMinSeverity(cfg.Report.MinSeverity)
	if err != nil {
		exitWithUsage(err.Error(), "recontriage run -min-severity high ...")
	}
	if !*noArchive {
		of.ArchivePath = cfg.Archive
	}

	suppressSrc := &input.Source{Hosts: suppress, ListFile: *suppressFile}
	suppressHosts, err := suppressSrc.Entries()
	if err != nil {
		exitWithError("Failed to read suppression list: %v", err)
	}

	ui.PrintMiniBanner()
	ui.PrintSection("Full Pipeline")
	ui.PrintConfigLine("Target", *domain)
	ui.PrintConfigLine("Engine", cfg.Engine.Path)
	ui.PrintConfigLine("Scanner", cfg.Scanner.Path)
	if *tech != "" {
		ui.PrintConfigLine("Tech Filter", *tech)
	}
	fmt.Fprintln(os.Stderr)

	st := session.New(*domain)
	dc, err := of.InitDispatcher(st.ID, *domain)
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Output setup: %v", err))
	}

	ctx, cancel := cli.SignalContext(duration.KillGrace)
	defer cancel()

	// Stage one: discovery with novelty tagging.
	reconResult := reconStage(ctx, dc, st, cfg, of)

	// Stage two: triage selection over the tagged records.
	kept := applyTriage(st.Records(), triageOptions{
		Tech:          *tech,
		NewOnly:       *newOnly,
		SensitiveOnly: *sensitiveOnly,
	})
	sel := st.Selection()
	sel.Select(asset.Identifiers(kept)...)
	sel.Suppress(suppressHosts...)
	targets := sel.Selected()

	ui.PrintSection("Vulnerability Scan")
	ui.PrintConfigLine("Selected", fmt.Sprintf("%d of %d assets", len(targets), len(reconResult.Records)))
	fmt.Fprintln(os.Stderr)

	// Stage three: the batch scan. An empty selection skips it.
	var findings []finding.Finding
	if scanResult := scanStage(ctx, dc, st, cfg, targets); scanResult != nil {
		findings = scanResult.Findings
	} else {
		ui.PrintWarning("No targets selected, skipping scan.")
	}

	// Stage four: suppression and the report.
	suppressedSet := sel.SuppressedSet()
	triage.MarkFalsePositives(findings, suppressedSet)
	reportable := report.Suppress(findings, suppressedSet)

	renderer, err := report.NewRenderer(report.Options{
		TemplatePath: cfg.Report.Template,
		MinSeverity:  minSev,
	})
	if err != nil {
		failRun(ctx, dc, "report", err)
	}
	outDir := cfg.Report.OutputDir
	if outDir == "" {
		outDir = "."
	}
	reportPath, err := renderer.RenderToFile(outDir, report.NewContext(*domain, reportable))
	if err != nil {
		failRun(ctx, dc, "report", err)
	}

	dc.EmitSummary(ctx, events.SummaryTotals{
		Assets:       len(reconResult.Records),
		NewAssets:    reconResult.NewCount,
		SkippedLines: reconResult.Skipped,
		Findings:     len(findings),
		Suppressed:   len(findings) - len(reportable),
	}, reportable, st.StartedAt, "completed")
	dc.Close()

	bySeverity := make(map[string]int)
	for sev, n := range finding.CountBySeverity(reportable) {
		bySeverity[string(sev)] = n
	}
	ui.PrintRunSummary(ui.RunSummary{
		Target:     *domain,
		Assets:     len(reconResult.Records),
		NewAssets:  reconResult.NewCount,
		Skipped:    reconResult.Skipped,
		Findings:   len(reportable),
		Suppressed: len(findings) - len(reportable),
		BySeverity: bySeverity,
		Duration:   st.Elapsed(),
		ExitReason: "completed",
	})
	ui.PrintSuccess("Report written to " + reportPath)
	os.Exit(defaults.ExitSuccess)
}
