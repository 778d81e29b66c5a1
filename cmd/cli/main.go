package main

import (
	"fmt"
	"os"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/ui"
)

func printUsage() {
	ui.PrintBanner()

	fmt.Println(ui.SectionStyle.Render("TWO-STAGE RECON TRIAGE"))
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("The Pipeline:"))
	fmt.Println()
	fmt.Printf("    %s  Stream the discovery engine, tag assets new since the last run\n", ui.ConfigValueStyle.Render("1. recon "))
	fmt.Printf("    %s  Narrow the asset list by tech stack and risk surface\n", ui.ConfigValueStyle.Render("2. triage"))
	fmt.Printf("    %s  Vulnerability-scan the selected targets\n", ui.ConfigValueStyle.Render("3. scan  "))
	fmt.Printf("    %s  Suppress false positives, render the report\n", ui.ConfigValueStyle.Render("4. report"))
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("Quick Example:"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("recontriage recon -d example.com -o assets.jsonl"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("recontriage triage -i assets.jsonl -tech php -new-only -o targets.txt"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("recontriage scan -l targets.txt -o findings.jsonl"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("recontriage report -i findings.jsonl -target example.com"))
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("One Shot:"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("recontriage run -d example.com -tech wordpress -new-only"))
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("COMMANDS"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("recon  "), "Stream asset discovery with cross-run novelty tagging")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("triage "), "Filter discovered assets, flag sensitive surfaces")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("scan   "), "Batch vulnerability scan of selected targets")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("report "), "Assemble the suppressed, categorized report")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("run    "), "Full pipeline in one invocation")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("history"), "Inspect or clear the asset history store")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("archive"), "List or show archived scan runs")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("doctor "), "Check the external binaries are available")
	fmt.Println()
	fmt.Println("Run 'recontriage <command> -h' for command flags.")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(defaults.ExitUsage)
	}

	switch os.Args[1] {
	case "recon", "discover":
		runRecon()
	case "triage", "filter":
		runTriage()
	case "scan":
		runScan()
	case "report":
		runReport()
	case "run", "pipeline", "auto":
		runPipeline()
	case "history":
		runHistory()
	case "archive":
		runArchive()
	case "doctor", "check":
		runDoctor()
	case "-h", "--help", "help":
		printUsage()
		os.Exit(defaults.ExitSuccess)
	case "-v", "--version", "version":
		ui.PrintMiniBanner()
		os.Exit(defaults.ExitSuccess)
	default:
		ui.PrintError(fmt.Sprintf("Unknown command: %s", os.Args[1]))
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(defaults.ExitUsage)
	}
}
