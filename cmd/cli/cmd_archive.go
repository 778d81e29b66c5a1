package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/recontriage/recontriage/pkg/archive"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/ui"
)

const archiveTimeLayout = "2006-01-02 15:04"

func runArchive() {
	if len(os.Args) < 3 {
		exitWithUsage("Archive subcommand is required", "recontriage archive list|show <run-id>")
	}
	sub := os.Args[2]

	// "show" takes the run ID as a positional argument before flags.
	var runID string
	flagArgs := os.Args[3:]
	if sub == "show" {
		if len(os.Args) < 4 {
			exitWithUsage("Run ID is required", "recontriage archive show <run-id>")
		}
		runID = os.Args[3]
		flagArgs = os.Args[4:]
	}

	archiveFlags := flag.NewFlagSet("archive", flag.ExitOnError)
	configPath := archiveFlags.String("config", "", "Config file path")
	archivePath := archiveFlags.String("archive", "", "Archive database path (overrides config)")

	of := &OutputFlags{}
	of.RegisterUIFlags(archiveFlags)

	archiveFlags.Parse(flagArgs)
	of.ApplyUISettings()

	cfg := mustLoadConfig(*configPath)
	if *archivePath != "" {
		cfg.Archive = *archivePath
	}

	store, err := archive.Open(cfg.Archive)
	if err != nil {
		exitWithError("Failed to open archive: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), duration.ArchiveQuery)
	defer cancel()

	switch sub {
	case "list":
		listArchivedRuns(ctx, store)
	case "show":
		showArchivedRun(ctx, store, runID)
	default:
		exitWithUsage(fmt.Sprintf("Unknown archive subcommand: %s", sub),
			"recontriage archive list|show <run-id>")
	}
	os.Exit(defaults.ExitSuccess)
}

func listArchivedRuns(ctx context.Context, store *archive.Store) {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		exitWithError("Failed to list runs: %v", err)
	}
	if len(runs) == 0 {
		ui.PrintInfo("Archive is empty")
		return
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.Target,
			r.StartedAt.Format(archiveTimeLayout),
			fmt.Sprintf("%d", r.Assets),
			fmt.Sprintf("%d", r.NewAssets),
			fmt.Sprintf("%d", r.Findings),
			r.ExitReason,
		})
	}
	fmt.Println(ui.RenderTable(
		[]string{"Run ID", "Target", "Started", "Assets", "New", "Findings", "Exit"}, rows))
}

func showArchivedRun(ctx context.Context, store *archive.Store, runID string) {
	run, err := store.RunByID(ctx, runID)
	if err != nil {
		exitWithError("Failed to load run: %v", err)
	}
	findings, err := store.FindingsByRun(ctx, runID)
	if err != nil {
		exitWithError("Failed to load findings: %v", err)
	}

	ui.PrintSection("Archived Run")
	ui.PrintConfigLine("Run ID", run.ID)
	ui.PrintConfigLine("Target", run.Target)
	ui.PrintConfigLine("Started", run.StartedAt.Format(archiveTimeLayout))
	ui.PrintConfigLine("Duration", run.CompletedAt.Sub(run.StartedAt).Round(time.Second).String())
	ui.PrintConfigLine("Assets", fmt.Sprintf("%d (%d new)", run.Assets, run.NewAssets))
	ui.PrintConfigLine("Findings", fmt.Sprintf("%d", run.Findings))
	fmt.Fprintln(os.Stderr)

	if len(findings) == 0 {
		ui.PrintInfo("No findings recorded for this run")
		return
	}
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []string{
			string(f.Severity), f.TemplateID, f.Host, f.Category,
		})
	}
	fmt.Println(ui.RenderTable([]string{"Severity", "Template", "Host", "Category"}, rows))
}
