// Package supervisor launches and owns external scanner processes.
//
// Two modes cover the pipeline's needs: Start streams the child's stdout
// through a pipe for incremental ingestion while the process runs, and
// Run executes a bounded batch scan to completion. In both modes the
// supervisor owns the child's lifetime: cancelling the context kills the
// process, so an interrupted run never leaves an orphaned scanner.
package supervisor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/recontriage/recontriage/pkg/duration"
)

// LaunchError reports that the executable could not be started at all:
// missing binary, permission problem, bad working directory. No output
// was produced. Callers should use errors.As().
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("supervisor: launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError reports that the process ran but exited non-zero. Output
// delivered before the exit remains valid; Stderr carries the child's
// captured diagnostics. Callers should use errors.As().
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("supervisor: process exited with code %d", e.Code)
}

// Config describes the process to supervise.
type Config struct {
	// Path is the executable to run, resolved against PATH if bare.
	Path string

	// Args are passed verbatim to the process.
	Args []string

	// Dir is the working directory. Empty means inherit.
	Dir string

	// Logger for structured logging (default: slog.Default()).
	Logger *slog.Logger
}

// Supervisor builds and launches one external process per call. A
// Supervisor is reusable; each Start or Run creates a fresh exec.Cmd,
// since a Cmd cannot be reused after it runs.
type Supervisor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Supervisor for the given process configuration.
func New(cfg Config) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{cfg: cfg, logger: logger}
}

func (s *Supervisor) buildCmd(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, s.cfg.Path, s.cfg.Args...)
	cmd.Dir = s.cfg.Dir
	cmd.WaitDelay = duration.KillGrace
	return cmd
}

// Process is a started streaming child. Read Stdout to exhaustion, then
// call Wait for the exit status and captured stderr.
type Process struct {
	cmd    *exec.Cmd
	ctx    context.Context
	stdout io.ReadCloser
	stderr bytes.Buffer

	waitOnce sync.Once
	waitErr  error
}

// Start launches the process and returns a handle streaming its stdout.
// A missing or unrunnable executable fails with *LaunchError before any
// output is produced.
func (s *Supervisor) Start(ctx context.Context) (*Process, error) {
	cmd := s.buildCmd(ctx)

	p := &Process{cmd: cmd, ctx: ctx}
	cmd.Stderr = &p.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Path: s.cfg.Path, Err: err}
	}
	p.stdout = stdout

	s.logger.Debug("starting process", "path", s.cfg.Path, "args", s.cfg.Args)
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: s.cfg.Path, Err: err}
	}
	return p, nil
}

// Stdout returns the child's standard output stream. It delivers output
// incrementally while the child runs and reaches EOF when the child
// exits and the pipe drains.
func (p *Process) Stdout() io.Reader {
	return p.stdout
}

// Wait blocks until the process exits and returns nil for a clean exit,
// *ExitError for a non-zero exit, or the context error if the run was
// cancelled. Stdout must be consumed before calling Wait. Wait is
// idempotent.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		if err == nil {
			return
		}
		if p.ctx.Err() != nil {
			p.waitErr = fmt.Errorf("supervisor: cancelled: %w", p.ctx.Err())
			return
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			p.waitErr = &ExitError{Code: exitErr.ExitCode(), Stderr: p.stderr.String()}
			return
		}
		p.waitErr = fmt.Errorf("supervisor: wait: %w", err)
	})
	return p.waitErr
}

// Stderr returns the captured standard error content. Call after Wait.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

// Result is the outcome of a batch Run.
type Result struct {
	Stdout   []byte
	Stderr   string
	Code     int
	Duration time.Duration
}

// Run executes the process to completion and captures both output
// streams. On a non-zero exit the partial Result is returned alongside
// the *ExitError so callers can still inspect what was produced.
func (s *Supervisor) Run(ctx context.Context) (*Result, error) {
	cmd := s.buildCmd(ctx)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	s.logger.Debug("running process", "path", s.cfg.Path, "args", s.cfg.Args)
	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   outBuf.Bytes(),
		Stderr:   errBuf.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("supervisor: cancelled: %w", ctx.Err())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.Code = exitErr.ExitCode()
			return result, &ExitError{Code: exitErr.ExitCode(), Stderr: errBuf.String()}
		}
		return nil, &LaunchError{Path: s.cfg.Path, Err: err}
	}
	return result, nil
}

// Check reports whether the executable resolves on PATH (or at its
// explicit path). A failure is returned as *LaunchError so callers can
// distinguish a missing tool from a tool that ran and failed.
func Check(path string) error {
	if _, err := exec.LookPath(path); err != nil {
		return &LaunchError{Path: path, Err: err}
	}
	return nil
}
