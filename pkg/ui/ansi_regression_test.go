// Ensures no ANSI escape codes leak into non-terminal (redirected or
// piped) output. Test runner stderr is always a pipe, so the guards
// below match the exact environment where a leak would hit users.
package ui

import (
	"bytes"
	"regexp"
	"testing"
	"time"
)

// ansiPattern matches CSI escape sequences (colors, cursor movement,
// erase).
var ansiPattern = regexp.MustCompile(`\x1b\[[\x30-\x3f]*[\x20-\x2f]*[\x40-\x7e]`)

func assertNoANSI(t *testing.T, label string, buf *bytes.Buffer) {
	t.Helper()
	if loc := ansiPattern.FindIndex(buf.Bytes()); loc != nil {
		start := loc[0] - 20
		if start < 0 {
			start = 0
		}
		end := loc[1] + 20
		if end > buf.Len() {
			end = buf.Len()
		}
		t.Errorf("%s: ANSI escape at byte %d: %q", label, loc[0], buf.Bytes()[start:end])
	}
}

// TestDefaultProgressModeNonTerminal verifies the automatic downgrade to
// streaming mode when stderr is piped.
func TestDefaultProgressModeNonTerminal(t *testing.T) {
	if StderrIsTerminal() {
		t.Skip("stderr is a terminal")
	}
	if mode := DefaultProgressMode(); mode != ProgressStreaming {
		t.Errorf("DefaultProgressMode() = %d; want ProgressStreaming (%d)", mode, ProgressStreaming)
	}
}

// TestStreamProgressStreamingNoANSI exercises the streaming emit path
// and asserts zero ANSI codes in the output.
func TestStreamProgressStreamingNoANSI(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamProgress(StreamProgressConfig{
		Phase:  "discovering example.com",
		Mode:   ProgressStreaming,
		Writer: &buf,
	})
	p.Start()
	for i := 0; i < 5; i++ {
		p.AddAsset(true)
		p.AddFinding("critical")
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()
	assertNoANSI(t, "StreamProgress/Streaming", &buf)
}

// TestStreamProgressInteractiveContainsANSI is the inverse sanity check:
// interactive mode must use escape codes to redraw its line. If this
// fails, something stripped ANSI unconditionally and broke terminal UX.
func TestStreamProgressInteractiveContainsANSI(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamProgress(StreamProgressConfig{
		Phase:  "scanning",
		Mode:   ProgressInteractive,
		Writer: &buf,
	})
	p.Start()
	p.AddAsset(true)
	time.Sleep(400 * time.Millisecond) // let the render loop fire
	p.Stop()

	if !ansiPattern.Match(buf.Bytes()) {
		t.Error("interactive mode should contain ANSI escape codes but found none")
	}
}

// TestRunSummaryNoANSI verifies the summary box renders plain when the
// test binary's stdout is piped (lipgloss downgrades to the Ascii
// profile in that environment).
func TestRunSummaryNoANSI(t *testing.T) {
	if StdoutIsTerminal() || StderrIsTerminal() {
		t.Skip("running in a real terminal; lipgloss may emit color")
	}
	var buf bytes.Buffer
	FprintRunSummary(&buf, RunSummary{
		Target:     "example.com",
		Assets:     42,
		NewAssets:  7,
		Skipped:    1,
		Findings:   3,
		BySeverity: map[string]int{"high": 2, "info": 1},
		Duration:   42 * time.Second,
		ExitReason: "completed",
	})
	assertNoANSI(t, "RunSummary", &buf)
}
