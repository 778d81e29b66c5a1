package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/input"
	"github.com/recontriage/recontriage/pkg/report"
	"github.com/recontriage/recontriage/pkg/session"
	"github.com/recontriage/recontriage/pkg/taxonomy"
	"github.com/recontriage/recontriage/pkg/triage"
	"github.com/recontriage/recontriage/pkg/ui"
)

func runReport() {
	reportFlags := flag.NewFlagSet("report", flag.ExitOnError)
	inputFile := reportFlags.String("i", "", "Finding JSONL file from a scan run (required)")
	target := reportFlags.String("target", "", "Target name for the report header (required)")
	configPath := reportFlags.String("config", "", "Config file path")
	var suppress input.StringSliceFlag
	reportFlags.Var(&suppress, "suppress", "Host(s) to suppress as false positives")
	suppressFile := reportFlags.String("suppress-file", "", "File of hosts to suppress, one per line")
	templatePath := reportFlags.String("template", "", "Custom report template (overrides config)")
	minSeverity := reportFlags.String("min-severity", "", "Drop findings below this severity (overrides config)")
	outputPath := reportFlags.String("o", "", "Report output file (default: report_<target>.md; \"-\" for stdout)")

	of := &OutputFlags{}
	of.RegisterUIFlags(reportFlags)

	reportFlags.Parse(os.Args[2:])
	of.ApplyUISettings()

	if *inputFile == "" {
		exitWithUsage("Input file is required", "recontriage report -i findings.jsonl -target example.com")
	}
	if *target == "" {
		exitWithUsage("Target name is required", "recontriage report -i findings.jsonl -target example.com")
	}

	cfg := mustLoadConfig(*configPath)
	if *templatePath != "" {
		cfg.Report.Template = *templatePath
	}
	if *minSeverity != "" {
		cfg.Report.MinSeverity = *minSeverity
	}
	minSev, err := parseMinSeverity(cfg.Report.MinSeverity)
	if err != nil {
		exitWithUsage(err.Error(), "recontriage report -min-severity high ...")
	}

	findings, err := session.LoadFindings(*inputFile)
	if err != nil {
		exitWithError("Failed to load findings: %v", err)
	}

	suppressSrc := &input.Source{Hosts: suppress, ListFile: *suppressFile}
	suppressHosts, err := suppressSrc.Entries()
	if err != nil {
		exitWithError("Failed to read suppression list: %v", err)
	}
	suppressed := report.HostSet(suppressHosts)

	ui.PrintMiniBanner()
	ui.PrintSection("Report Assembly")
	ui.PrintConfigLine("Input", *inputFile)
	ui.PrintConfigLine("Target", *target)
	if len(suppressed) > 0 {
		ui.PrintConfigLine("Suppress", fmt.Sprintf("%d hosts", len(suppressed)))
	}
	if minSev != "" {
		ui.PrintConfigLine("Min Severity", string(minSev))
	}
	fmt.Fprintln(os.Stderr)

	triage.MarkFalsePositives(findings, suppressed)
	kept := report.Suppress(findings, suppressed)

	renderer, err := report.NewRenderer(report.Options{
		TemplatePath: cfg.Report.Template,
		MinSeverity:  minSev,
	})
	if err != nil {
		exitWithError("Report template: %v", err)
	}

	rctx := report.NewContext(*target, kept)
	path, err := renderReport(renderer, rctx, *outputPath, cfg.Report.OutputDir)
	if err != nil {
		exitWithError("Report rendering: %v", err)
	}

	printCategoryBreakdown(kept)
	if path != "" {
		ui.PrintSuccess("Report written to " + path)
	}
	ui.PrintRunSummary(ui.RunSummary{
		Target:     *target,
		Findings:   len(kept),
		Suppressed: len(findings) - len(kept),
		ExitReason: "completed",
	})
	os.Exit(defaults.ExitSuccess)
}

// renderReport writes the report to the requested destination: stdout
// for "-", the explicit path when given, otherwise the conventional
// report_<target>.md name under outputDir. Returns the written path,
// empty for stdout.
func renderReport(renderer *report.Renderer, rctx report.Context, outputPath, outputDir string) (string, error) {
	if outputPath == "-" {
		return "", renderer.Render(os.Stdout, rctx)
	}
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return outputPath, renderer.Render(f, rctx)
	}
	if outputDir == "" {
		outputDir = "."
	}
	return renderer.RenderToFile(outputDir, rctx)
}

// printCategoryBreakdown shows the per-category finding counts that
// made it into the report.
func printCategoryBreakdown(findings []finding.Finding) {
	if ui.IsSilent() {
		return
	}
	summary := taxonomy.Summarize(findings)
	if len(summary) == 0 {
		ui.PrintInfo("No findings to report")
		return
	}

	rows := make([][]string, 0, len(summary))
	for _, cc := range summary {
		rows = append(rows, []string{cc.Category, fmt.Sprintf("%d", cc.Count)})
	}
	fmt.Fprintln(os.Stderr, ui.RenderTable([]string{"Category", "Findings"}, rows))
}
