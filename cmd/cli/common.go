package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/recontriage/recontriage/pkg/config"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/ui"
)

// mustLoadConfig loads the tool configuration or exits with a usage
// error. An empty path selects the default location, where a missing
// file is fine.
func mustLoadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Configuration error: %v", err))
		os.Exit(defaults.ExitUsage)
	}
	return cfg
}

// parseMinSeverity validates a -min-severity flag value. Empty means
// no cut; anything else must be a recognized severity level.
func parseMinSeverity(raw string) (finding.Severity, error) {
	if raw == "" {
		return "", nil
	}
	s := finding.Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown severity %q (expected info, low, medium, high, or critical)", raw)
	}
	return s, nil
}

// firstOr returns the first element of a list or the fallback when the
// list is empty. Used for run labels over target lists.
func firstOr(list []string, fallback string) string {
	if len(list) > 0 {
		return list[0]
	}
	return fallback
}
