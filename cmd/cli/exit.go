package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/history"
	"github.com/recontriage/recontriage/pkg/stream"
	"github.com/recontriage/recontriage/pkg/supervisor"
	"github.com/recontriage/recontriage/pkg/ui"
	"github.com/recontriage/recontriage/pkg/vulnscan"
)

// exitWithError prints a formatted error message and exits with the
// operational error code. Use instead of ui.PrintError + os.Exit for
// consistent CLI error handling.
func exitWithError(format string, args ...any) {
	ui.PrintError(fmt.Sprintf(format, args...))
	os.Exit(defaults.ExitRunError)
}

// exitWithUsage prints an error message and a usage hint, then exits
// with the usage error code.
func exitWithUsage(msg, usage string) {
	ui.PrintError(msg)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:", usage)
	os.Exit(defaults.ExitUsage)
}

// classifyError maps pipeline errors onto the stable error-type labels
// used in error events and log lines.
func classifyError(err error) string {
	var launchErr *supervisor.LaunchError
	var exitErr *supervisor.ExitError
	var toolErr *stream.ToolError
	var lineErr *vulnscan.LineError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &launchErr):
		return "launch"
	case errors.As(err, &exitErr):
		return "exit"
	case errors.As(err, &toolErr):
		return "domain"
	case errors.As(err, &lineErr):
		return "parse"
	case errors.Is(err, history.ErrPersist):
		return "persist"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, vulnscan.ErrNoTargets):
		return "no_targets"
	default:
		return "other"
	}
}

// describeRunError renders a pipeline error as an operator-facing
// message, surfacing captured stderr when the child produced any.
func describeRunError(err error) string {
	var launchErr *supervisor.LaunchError
	if errors.As(err, &launchErr) {
		return fmt.Sprintf("Binary not found or not runnable: %s (%v)", launchErr.Path, launchErr.Err)
	}

	var exitErr *supervisor.ExitError
	if errors.As(err, &exitErr) {
		msg := fmt.Sprintf("Process exited with code %d", exitErr.Code)
		if diag := strings.TrimSpace(exitErr.Stderr); diag != "" {
			msg += ": " + diag
		}
		return msg
	}

	var toolErr *stream.ToolError
	if errors.As(err, &toolErr) {
		if toolErr.Message != "" {
			return fmt.Sprintf("Engine reported %s: %s", toolErr.Kind, toolErr.Message)
		}
		return fmt.Sprintf("Engine reported %s", toolErr.Kind)
	}

	if errors.Is(err, context.Canceled) {
		return "Run cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Run timed out"
	}
	return err.Error()
}

// failRun reports a fatal stage error through the dispatcher and the
// terminal, closes the dispatcher, and exits.
func failRun(ctx context.Context, dc *DispatcherContext, stage string, err error) {
	dc.EmitError(ctx, stage, err, true)
	dc.Close()
	exitWithError("%s", describeRunError(err))
}
