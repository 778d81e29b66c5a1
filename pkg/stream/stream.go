// Package stream decodes the discovery engine's line-delimited JSON
// output incrementally. A live subprocess stream is noisy: partial and
// malformed lines are expected and skipped without aborting ingestion,
// while a well-formed object carrying an "error" field is a control
// signal from the tool itself and terminates the logical stream.
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/jsonutil"
)

// ErrToolFailure indicates the external tool reported a structured
// failure on its output stream. Callers should use errors.Is().
var ErrToolFailure = errors.New("stream: tool reported failure")

// ToolError carries the tool's own failure report, decoded from a
// control object like {"error":"dns_failure","message":"..."}. It is
// distinct from the process crashing: the child may still be running.
type ToolError struct {
	Kind    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("stream: tool reported failure: %s", e.Kind)
	}
	return fmt.Sprintf("stream: tool reported failure: %s: %s", e.Kind, e.Message)
}

func (e *ToolError) Unwrap() error { return ErrToolFailure }

// Scanner token limits. Discovery output lines are usually small, but
// title and tech-stack payloads from misbehaving endpoints have been
// seen in the hundreds of kilobytes.
const (
	initialBuf = defaults.BufferLarge
	maxLine    = defaults.BufferMax
)

// line is the wire shape of one output line: either an asset record or
// a control object. The Error pointer distinguishes a present "error"
// key from an absent one.
type line struct {
	asset.Record
	Error   *string `json:"error"`
	Message string  `json:"message,omitempty"`
}

// Decoder reads one JSON object per line from an io.Reader. A Decoder
// is not restartable; create a new one per source.
type Decoder struct {
	sc      *bufio.Scanner
	skipped int
	err     error
}

// NewDecoder returns a Decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, initialBuf), maxLine)
	return &Decoder{sc: sc}
}

// Next returns the next decoded asset record. It returns io.EOF when the
// source is exhausted, or a *ToolError once the tool reports a failure;
// after either, every subsequent call returns the same result. Lines
// that fail to decode are skipped silently and counted.
func (d *Decoder) Next() (asset.Record, error) {
	if d.err != nil {
		return asset.Record{}, d.err
	}

	for d.sc.Scan() {
		raw := bytes.TrimSpace(d.sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var l line
		if err := jsonutil.Unmarshal(raw, &l); err != nil {
			d.skipped++
			continue
		}

		if l.Error != nil {
			d.err = &ToolError{Kind: *l.Error, Message: l.Message}
			return asset.Record{}, d.err
		}
		return l.Record, nil
	}

	if err := d.sc.Err(); err != nil {
		d.err = fmt.Errorf("stream: read: %w", err)
	} else {
		d.err = io.EOF
	}
	return asset.Record{}, d.err
}

// Skipped returns how many non-empty lines failed to decode and were
// dropped.
func (d *Decoder) Skipped() int {
	return d.skipped
}
