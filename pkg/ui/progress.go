package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/recontriage/recontriage/pkg/duration"
)

// ProgressMode determines how live progress is displayed.
type ProgressMode int

const (
	// ProgressInteractive rewrites a single line with ANSI escapes.
	ProgressInteractive ProgressMode = iota
	// ProgressStreaming emits plain lines, throttled, for CI and pipes.
	ProgressStreaming
	// ProgressSilent emits nothing.
	ProgressSilent
)

// DefaultProgressMode returns Interactive when stderr is a terminal and
// Streaming otherwise, so redirected output never carries ANSI codes.
func DefaultProgressMode() ProgressMode {
	if StderrIsTerminal() {
		return ProgressInteractive
	}
	return ProgressStreaming
}

// StreamProgressConfig configures a StreamProgress.
type StreamProgressConfig struct {
	// Phase is the initial activity label, e.g. "discovering example.com".
	Phase string

	Mode ProgressMode

	// Writer defaults to os.Stderr.
	Writer io.Writer

	Spinner SpinnerType
}

// StreamProgress is a live counter display for pipeline stages. Totals
// are unknown up front (the engine streams until it is done), so there
// is no bar or ETA; the display is counts, rate, and elapsed time.
//
// Interactive mode redraws one line per render tick. Streaming mode has
// no render goroutine at all: counter updates emit lines inline, and a
// rate.Sometimes gate keeps them to at most one per ProgressInterval no
// matter how fast records arrive.
type StreamProgress struct {
	config    StreamProgressConfig
	startTime time.Time

	assets   int64
	fresh    int64
	skipped  int64
	findings int64
	highSev  int64

	phase atomic.Value

	emit rate.Sometimes

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	frame   int
}

// NewStreamProgress creates a progress display for a streaming stage.
func NewStreamProgress(config StreamProgressConfig) *StreamProgress {
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	p := &StreamProgress{
		config:    config,
		startTime: time.Now(),
		emit:      rate.Sometimes{Interval: duration.ProgressInterval},
		done:      make(chan struct{}),
	}
	p.phase.Store(config.Phase)
	return p
}

// Start begins the display. In interactive mode this spawns the render
// loop; in streaming mode lines are emitted from the Add* calls.
func (p *StreamProgress) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.startTime = time.Now()
	p.done = make(chan struct{})
	p.mu.Unlock()

	if p.config.Mode == ProgressInteractive {
		p.wg.Add(1)
		go p.renderLoop()
	}
}

// Stop halts the display. Interactive mode clears the progress line;
// streaming mode emits one final line past the throttle.
func (p *StreamProgress) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.done)
	p.mu.Unlock()

	switch p.config.Mode {
	case ProgressInteractive:
		p.wg.Wait()
		fmt.Fprint(p.config.Writer, "\033[2K\r")
	case ProgressStreaming:
		p.emitLine()
	}
}

// SetPhase updates the activity label.
func (p *StreamProgress) SetPhase(phase string) {
	p.phase.Store(phase)
}

// AddAsset records one ingested asset, new or previously seen.
func (p *StreamProgress) AddAsset(isNew bool) {
	atomic.AddInt64(&p.assets, 1)
	if isNew {
		atomic.AddInt64(&p.fresh, 1)
	}
	p.maybeEmit()
}

// AddSkipped records one malformed line absorbed by the decoder.
func (p *StreamProgress) AddSkipped() {
	atomic.AddInt64(&p.skipped, 1)
	p.maybeEmit()
}

// SetNew overwrites the new-asset count. Novelty is diffed against
// history only after the stream ends, so the ingest stage reconciles
// the count before the final line.
func (p *StreamProgress) SetNew(n int) {
	atomic.StoreInt64(&p.fresh, int64(n))
}

// AddFinding records one scanner finding.
func (p *StreamProgress) AddFinding(severity string) {
	atomic.AddInt64(&p.findings, 1)
	switch severity {
	case "critical", "high":
		atomic.AddInt64(&p.highSev, 1)
	}
	p.maybeEmit()
}

// Counts returns the current counters.
func (p *StreamProgress) Counts() (assets, fresh, skipped, findings int64) {
	return atomic.LoadInt64(&p.assets),
		atomic.LoadInt64(&p.fresh),
		atomic.LoadInt64(&p.skipped),
		atomic.LoadInt64(&p.findings)
}

// Elapsed returns the time since Start.
func (p *StreamProgress) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

func (p *StreamProgress) maybeEmit() {
	if p.config.Mode != ProgressStreaming {
		return
	}
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	if !running {
		return
	}
	p.emit.Do(p.emitLine)
}

// emitLine writes one plain streaming line:
//
//	[00:12] discovering example.com | assets: 42 (7 new) | skipped: 1 | findings: 3
func (p *StreamProgress) emitLine() {
	assets, fresh, skipped, findings := p.Counts()
	phase, _ := p.phase.Load().(string)
	fmt.Fprintf(p.config.Writer, "[%s] %s | assets: %d (%d new) | skipped: %d | findings: %d\n",
		formatClock(p.Elapsed()), phase, assets, fresh, skipped, findings)
}

func (p *StreamProgress) renderLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(duration.RenderInterval)
	defer ticker.Stop()

	spinner := GetSpinner(p.config.Spinner)

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.renderInteractive(spinner)
		}
	}
}

func (p *StreamProgress) renderInteractive(spinner Spinner) {
	assets, fresh, skipped, findings := p.Counts()
	highSev := atomic.LoadInt64(&p.highSev)
	phase, _ := p.phase.Load().(string)
	elapsed := p.Elapsed()

	frame := spinner.Frames[p.frame%len(spinner.Frames)]
	p.frame++

	rps := float64(assets+findings) / elapsed.Seconds()
	if elapsed < time.Second {
		rps = float64(assets + findings)
	}

	findingsStyle := StatValueStyle
	if highSev > 0 {
		findingsStyle = FailStyle
	}

	fmt.Fprintf(p.config.Writer,
		"\033[2K\r  %s %s  %s assets %s  %s skipped  %s findings  %s  %s",
		SpinnerStyle.Render(frame),
		SanitizeString(phase),
		StatValueStyle.Render(fmt.Sprintf("%d", assets)),
		StatLabelStyle.Render(fmt.Sprintf("(%d new)", fresh)),
		StatValueStyle.Render(fmt.Sprintf("%d", skipped)),
		findingsStyle.Render(fmt.Sprintf("%d", findings)),
		StatLabelStyle.Render(fmt.Sprintf("%.1f/s", rps)),
		StatLabelStyle.Render(formatClock(elapsed)),
	)
}

// formatClock formats a duration as MM:SS, or HH:MM:SS past an hour.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
