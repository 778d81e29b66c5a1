package session

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/jsonutil"
	"github.com/recontriage/recontriage/pkg/output/events"
)

// stageLine probes one line of a stage file for the export envelope.
// Lines written by the JSONL writer carry a type tag; bare lines do not.
type stageLine struct {
	Type    string           `json:"type"`
	Record  *asset.Record    `json:"record"`
	Finding *finding.Finding `json:"finding"`
}

// LoadRecords reads asset records from a stage file so triage and scan
// can replay an earlier recon invocation. The file may be a dispatcher
// JSONL export (asset events are extracted, other event types skipped)
// or bare records, one JSON object per line.
func LoadRecords(path string) ([]asset.Record, error) {
	var out []asset.Record
	err := eachLine(path, func(n int, line []byte) error {
		var probe stageLine
		if err := jsonutil.Unmarshal(line, &probe); err != nil {
			return fmt.Errorf("session: %s line %d: %w", path, n, err)
		}
		if probe.Type != "" {
			if probe.Type == string(events.EventTypeAsset) && probe.Record != nil {
				out = append(out, *probe.Record)
			}
			return nil
		}
		var rec asset.Record
		if err := jsonutil.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("session: %s line %d: %w", path, n, err)
		}
		if rec.Identifier != "" {
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFindings reads vulnerability findings from a stage file produced
// by an earlier scan invocation. Accepts the same two shapes as
// LoadRecords: dispatcher exports and bare finding objects.
func LoadFindings(path string) ([]finding.Finding, error) {
	var out []finding.Finding
	err := eachLine(path, func(n int, line []byte) error {
		var probe stageLine
		if err := jsonutil.Unmarshal(line, &probe); err != nil {
			return fmt.Errorf("session: %s line %d: %w", path, n, err)
		}
		if probe.Type != "" {
			if probe.Type == string(events.EventTypeFinding) && probe.Finding != nil {
				out = append(out, *probe.Finding)
			}
			return nil
		}
		var f finding.Finding
		if err := jsonutil.Unmarshal(line, &f); err != nil {
			return fmt.Errorf("session: %s line %d: %w", path, n, err)
		}
		if f.Host != "" || f.Template != "" {
			out = append(out, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func eachLine(path string, fn func(n int, line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, defaults.BufferLarge), defaults.BufferMax)
	n := 0
	for sc.Scan() {
		n++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("session: %s: %w", path, err)
	}
	return nil
}
