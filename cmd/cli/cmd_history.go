package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/history"
	"github.com/recontriage/recontriage/pkg/ui"
)

func runHistory() {
	if len(os.Args) < 3 {
		exitWithUsage("History subcommand is required", "recontriage history show|count|clear")
	}
	sub := os.Args[2]

	historyFlags := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := historyFlags.String("config", "", "Config file path")
	historyPath := historyFlags.String("history", "", "Asset history file (overrides config)")

	of := &OutputFlags{}
	of.RegisterUIFlags(historyFlags)

	historyFlags.Parse(os.Args[3:])
	of.ApplyUISettings()

	cfg := mustLoadConfig(*configPath)
	if *historyPath != "" {
		cfg.History = *historyPath
	}
	store := history.NewStore(cfg.History)

	switch sub {
	case "show", "list":
		ids, err := store.All()
		if err != nil {
			exitWithError("Failed to read history: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	case "count":
		n, err := store.Count()
		if err != nil {
			exitWithError("Failed to read history: %v", err)
		}
		fmt.Println(n)
	case "clear":
		if err := store.Clear(); err != nil {
			exitWithError("Failed to clear history: %v", err)
		}
		ui.PrintSuccess("History cleared: " + store.Path())
	default:
		exitWithUsage(fmt.Sprintf("Unknown history subcommand: %s", sub),
			"recontriage history show|count|clear")
	}
	os.Exit(defaults.ExitSuccess)
}
