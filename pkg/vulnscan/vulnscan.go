// Package vulnscan drives the second-stage vulnerability scanner
// against an explicitly selected set of targets. The scan is batch by
// design: targets are bounded and operator-chosen, so the orchestrator
// writes them to a transient list file, runs the scanner to completion,
// and normalizes its line-delimited JSON findings.
package vulnscan

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/jsonutil"
	"github.com/recontriage/recontriage/pkg/supervisor"
	"github.com/recontriage/recontriage/pkg/taxonomy"
)

// ErrNoTargets reports an empty selection. It is a no-op condition for
// the operator, not a scanner failure.
var ErrNoTargets = errors.New("vulnscan: no targets selected")

// fixedArgs request silent, line-delimited JSON output with tag
// metadata. They precede any operator-supplied extra args.
var fixedArgs = []string{"-silent", "-json", "-include-tags"}

// LineError is one scanner output line that failed to decode. The
// remaining lines are still processed.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("vulnscan: line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Result is the outcome of one batch scan.
type Result struct {
	Findings   []finding.Finding
	LineErrors []LineError
	Stderr     string
	Duration   time.Duration
}

// Config configures the orchestrator.
type Config struct {
	// Path is the scanner binary (default: "nuclei", resolved via PATH).
	Path string

	// Args are extra scanner arguments appended after the fixed set.
	Args []string

	// Timeout bounds the whole batch (default: 15m).
	Timeout time.Duration

	// Logger for structured logging (default: slog.Default()).
	Logger *slog.Logger
}

// Orchestrator runs batch scans. It is reusable across selections.
type Orchestrator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Orchestrator, applying defaults for unset fields.
func New(cfg Config) *Orchestrator {
	if cfg.Path == "" {
		cfg.Path = defaults.ScannerBinary
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.ScanBatch
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{cfg: cfg, logger: logger}
}

// Scan runs the scanner against targets and returns normalized
// findings. An empty selection returns ErrNoTargets without touching
// the filesystem or spawning a process. The transient target list is
// removed on every exit path.
func (o *Orchestrator) Scan(ctx context.Context, targets []string) (*Result, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	// Missing binary is an operator-fixable condition; report it
	// before writing anything to disk.
	if err := supervisor.Check(o.cfg.Path); err != nil {
		return nil, err
	}

	listPath, err := writeTargetList(targets)
	if err != nil {
		return nil, fmt.Errorf("vulnscan: write target list: %w", err)
	}
	defer os.Remove(listPath)

	args := append([]string{"-l", listPath}, fixedArgs...)
	args = append(args, o.cfg.Args...)

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	o.logger.Info("starting vulnerability scan",
		slog.Int("targets", len(targets)),
		slog.String("scanner", o.cfg.Path))

	sup := supervisor.New(supervisor.Config{
		Path:   o.cfg.Path,
		Args:   args,
		Logger: o.logger,
	})
	procRes, err := sup.Run(ctx)
	if err != nil {
		var exitErr *supervisor.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("vulnscan: scanner failed: %w: %s", exitErr, strings.TrimSpace(exitErr.Stderr))
		}
		return nil, err
	}

	result := parseOutput(procRes.Stdout)
	result.Stderr = procRes.Stderr
	result.Duration = procRes.Duration

	o.logger.Info("scan complete",
		slog.Int("findings", len(result.Findings)),
		slog.Int("bad_lines", len(result.LineErrors)),
		slog.Duration("took", result.Duration))
	return result, nil
}

// writeTargetList writes one target per line to a transient file and
// returns its path. The caller owns removal.
func writeTargetList(targets []string) (string, error) {
	tmp, err := os.CreateTemp("", defaults.ToolName+"-targets-*.txt")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, t := range targets {
		sb.WriteString(t)
		sb.WriteByte('\n')
	}

	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// scanResult is the scanner's wire shape, one JSON object per line.
type scanResult struct {
	TemplateID string `json:"template-id"`
	Host       string `json:"host"`
	MatchedAt  string `json:"matched-at"`
	Timestamp  string `json:"timestamp"`
	Info       struct {
		Name        string  `json:"name"`
		Severity    string  `json:"severity"`
		Tags        tagList `json:"tags"`
		Remediation string  `json:"remediation"`
	} `json:"info"`
}

// tagList accepts both wire encodings of tags: a JSON string array or
// a single comma-separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := jsonutil.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = splitTags(s)
		return nil
	}
	var arr []string
	if err := jsonutil.Unmarshal(data, &arr); err != nil {
		return err
	}
	*t = arr
	return nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// toFinding normalizes a wire object: missing names become "Unknown",
// unrecognized severities default to info, missing remediation gets the
// fixed sentinel, and the category is derived from tags.
func (sr *scanResult) toFinding() finding.Finding {
	name := sr.Info.Name
	if name == "" {
		name = "Unknown"
	}
	remediation := sr.Info.Remediation
	if remediation == "" {
		remediation = finding.DefaultRemediation
	}
	return finding.Finding{
		Template:    name,
		TemplateID:  sr.TemplateID,
		Severity:    finding.ParseSeverity(sr.Info.Severity),
		Host:        sr.Host,
		MatchedAt:   sr.MatchedAt,
		Timestamp:   sr.Timestamp,
		Tags:        sr.Info.Tags,
		Category:    taxonomy.Categorize(sr.Info.Tags),
		Remediation: remediation,
	}
}

// parseOutput decodes the scanner's stdout line by line. A bad line is
// recorded and skipped; it never aborts the batch.
func parseOutput(stdout []byte) *Result {
	result := &Result{}

	sc := bufio.NewScanner(bytes.NewReader(stdout))
	sc.Buffer(make([]byte, defaults.BufferLarge), defaults.BufferMax)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var sr scanResult
		if err := jsonutil.Unmarshal(raw, &sr); err != nil {
			result.LineErrors = append(result.LineErrors, LineError{Line: lineNo, Err: err})
			continue
		}
		result.Findings = append(result.Findings, sr.toFinding())
	}
	return result
}
