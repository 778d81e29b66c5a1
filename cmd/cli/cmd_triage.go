package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/session"
	"github.com/recontriage/recontriage/pkg/triage"
	"github.com/recontriage/recontriage/pkg/ui"
)

// triageOptions are the filter switches applied to a discovery result.
type triageOptions struct {
	Tech          string
	NewOnly       bool
	SensitiveOnly bool
}

func runTriage() {
	triageFlags := flag.NewFlagSet("triage", flag.ExitOnError)
	inputFile := triageFlags.String("i", "", "Asset JSONL file from a recon run (required)")
	tech := triageFlags.String("tech", "", "Keep only assets whose tech stack matches this token")
	newOnly := triageFlags.Bool("new-only", false, "Keep only assets new since the last run")
	sensitiveOnly := triageFlags.Bool("sensitive-only", false, "Keep only assets flagged as sensitive surface")
	outputFile := triageFlags.String("o", "", "Write selected target list here (default: stdout)")

	of := &OutputFlags{}
	of.RegisterUIFlags(triageFlags)

	triageFlags.Parse(os.Args[2:])
	of.ApplyUISettings()

	if *inputFile == "" {
		exitWithUsage("Input file is required", "recontriage triage -i assets.jsonl")
	}

	records, err := session.LoadRecords(*inputFile)
	if err != nil {
		exitWithError("Failed to load assets: %v", err)
	}

	ui.PrintMiniBanner()
	ui.PrintSection("Asset Triage")
	ui.PrintConfigLine("Input", *inputFile)
	if *tech != "" {
		ui.PrintConfigLine("Tech Filter", *tech)
	}
	if *newOnly {
		ui.PrintConfigLine("New Only", "true")
	}
	if *sensitiveOnly {
		ui.PrintConfigLine("Sensitive Only", "true")
	}
	fmt.Fprintln(os.Stderr)

	kept := applyTriage(records, triageOptions{
		Tech:          *tech,
		NewOnly:       *newOnly,
		SensitiveOnly: *sensitiveOnly,
	})

	printAssetTable(kept)

	sel := triage.NewSelection()
	sel.Select(asset.Identifiers(kept)...)
	targets := sel.Selected()

	if *outputFile != "" {
		if err := writeTargetList(*outputFile, targets); err != nil {
			exitWithError("Failed to write target list: %v", err)
		}
		ui.PrintSuccess(fmt.Sprintf("%d targets written to %s", len(targets), *outputFile))
	} else {
		for _, t := range targets {
			fmt.Println(t)
		}
	}

	ui.PrintRunSummary(ui.RunSummary{
		Target:     *inputFile,
		Assets:     len(records),
		NewAssets:  countNew(kept),
		ExitReason: fmt.Sprintf("%d of %d assets selected", len(kept), len(records)),
	})
	os.Exit(defaults.ExitSuccess)
}

// applyTriage annotates and narrows a record list: sensitive-surface
// marking first (annotation, order-preserving), then the tech,
// novelty, and sensitivity filters.
func applyTriage(records []asset.Record, opts triageOptions) []asset.Record {
	triage.MarkSensitive(records)

	kept := triage.FilterByTech(records, opts.Tech)
	if opts.NewOnly {
		filtered := make([]asset.Record, 0, len(kept))
		for _, r := range kept {
			if r.IsNew {
				filtered = append(filtered, r)
			}
		}
		kept = filtered
	}
	if opts.SensitiveOnly {
		filtered := make([]asset.Record, 0, len(kept))
		for _, r := range kept {
			if r.Sensitive {
				filtered = append(filtered, r)
			}
		}
		kept = filtered
	}
	return kept
}

func countNew(records []asset.Record) int {
	n := 0
	for _, r := range records {
		if r.IsNew {
			n++
		}
	}
	return n
}

// printAssetTable renders the kept assets for operator review.
func printAssetTable(records []asset.Record) {
	if ui.IsSilent() || len(records) == 0 {
		return
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		status := ""
		if r.StatusCode > 0 {
			status = fmt.Sprintf("%d", r.StatusCode)
		}
		marks := ""
		if r.IsNew {
			marks = "NEW"
		}
		if r.Sensitive {
			if marks != "" {
				marks += " "
			}
			marks += "SENSITIVE"
		}
		rows = append(rows, []string{
			r.Identifier, status, r.Title, strings.Join(r.TechStack, ", "), marks,
		})
	}
	fmt.Fprintln(os.Stderr, ui.RenderTable(
		[]string{"Host", "Status", "Title", "Tech", "Flags"}, rows))
}

// writeTargetList writes one identifier per line.
func writeTargetList(path string, targets []string) error {
	var sb strings.Builder
	for _, t := range targets {
		sb.WriteString(t)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
