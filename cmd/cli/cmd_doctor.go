package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/supervisor"
	"github.com/recontriage/recontriage/pkg/ui"
)

// runDoctor checks that the configured external binaries resolve, the
// operator-side counterpart of the engine's own preflight.
func runDoctor() {
	doctorFlags := flag.NewFlagSet("doctor", flag.ExitOnError)
	configPath := doctorFlags.String("config", "", "Config file path")

	of := &OutputFlags{}
	of.RegisterUIFlags(doctorFlags)

	doctorFlags.Parse(os.Args[2:])
	of.ApplyUISettings()

	cfg := mustLoadConfig(*configPath)

	ui.PrintMiniBanner()
	ui.PrintSection("Environment Check")

	ok := true
	ok = checkBinary("Discovery engine", cfg.Engine.Path) && ok
	ok = checkBinary("Vulnerability scanner", cfg.Scanner.Path) && ok

	ui.PrintConfigLine("History", cfg.History)
	ui.PrintConfigLine("Archive", cfg.Archive)
	fmt.Fprintln(os.Stderr)

	if !ok {
		ui.PrintError("Some external binaries are missing")
		os.Exit(defaults.ExitRunError)
	}
	ui.PrintSuccess("All external binaries found")
	os.Exit(defaults.ExitSuccess)
}

func checkBinary(label, path string) bool {
	if err := supervisor.Check(path); err != nil {
		ui.PrintError(fmt.Sprintf("%s: %s (not found)", label, path))
		return false
	}
	ui.PrintSuccess(fmt.Sprintf("%s: %s", label, path))
	return true
}
