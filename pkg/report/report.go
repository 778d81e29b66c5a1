// Package report assembles the final vulnerability report: it filters
// operator-suppressed hosts out of the finding list and renders the
// survivors through a markdown template.
//
// The assembly contract is intentionally small. Suppress is a pure
// order-preserving host filter; the renderer consumes a Context of
// {target, date, vulns} and nothing else. An empty finding list is a
// valid, reportable state and renders as an explicit "no findings"
// document rather than an error.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/template"
	"time"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/finding"
)

const dateLayout = "2006-01-02"

// Suppress returns the findings whose host is not in the suppressed
// set, preserving arrival order. A nil or empty set is the identity.
func Suppress(findings []finding.Finding, suppressed map[string]struct{}) []finding.Finding {
	if len(suppressed) == 0 {
		out := make([]finding.Finding, len(findings))
		copy(out, findings)
		return out
	}
	out := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		if _, drop := suppressed[f.Host]; drop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// HostSet converts a host list into the set form Suppress consumes.
// Empty entries are dropped.
func HostSet(hosts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return set
}

// Context is the renderer input: the scanned target, the report date,
// and the findings that survived suppression, in arrival order.
type Context struct {
	Target string
	Date   string
	Vulns  []finding.Finding
}

// NewContext stamps a render context with today's date.
func NewContext(target string, vulns []finding.Finding) Context {
	return Context{
		Target: target,
		Date:   time.Now().Format(dateLayout),
		Vulns:  vulns,
	}
}

// Options configures a Renderer.
type Options struct {
	// TemplatePath points at a caller-supplied template file. Empty
	// selects the builtin markdown template.
	TemplatePath string

	// MinSeverity drops findings below the given level before
	// rendering. Zero value disables the cut.
	MinSeverity finding.Severity
}

// Renderer renders a Context into a report document.
type Renderer struct {
	tmpl *template.Template
	min  finding.Severity
}

// NewRenderer parses the configured template once and returns the
// renderer. Template errors surface here, not at render time.
func NewRenderer(opts Options) (*Renderer, error) {
	tmpl, err := parseTemplate(opts.TemplatePath)
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, min: opts.MinSeverity}, nil
}

// Render writes the report for ctx to w.
func (r *Renderer) Render(w io.Writer, ctx Context) error {
	data := r.buildData(ctx)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

// RenderToFile renders the report into dir under the conventional
// name report_<target>.md and returns the written path.
func (r *Renderer) RenderToFile(dir string, ctx Context) (string, error) {
	path := filepath.Join(dir, defaults.ReportPrefix+ctx.Target+".md")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := r.Render(f, ctx); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("report: close %s: %w", path, err)
	}
	return path, nil
}

// templateData is what templates actually see: the raw context plus
// precomputed display groupings, so templates stay free of logic.
type templateData struct {
	Target     string
	Date       string
	Vulns      []finding.Finding
	Severities []severityCount
	Categories []categoryGroup
}

type severityCount struct {
	Label string
	Count int
}

type categoryGroup struct {
	Name      string
	OWASPCode string
	OWASPURL  string
	Findings  []finding.Finding
}

var severityLabels = map[finding.Severity]string{
	finding.Critical: "Critical",
	finding.High:     "High",
	finding.Medium:   "Medium",
	finding.Low:      "Low",
	finding.Info:     "Info",
}

func (r *Renderer) buildData(ctx Context) templateData {
	vulns := ctx.Vulns
	if r.min != "" {
		cut := make([]finding.Finding, 0, len(vulns))
		for _, f := range vulns {
			if f.Severity.Score() >= r.min.Score() {
				cut = append(cut, f)
			}
		}
		vulns = cut
	}

	data := templateData{
		Target: ctx.Target,
		Date:   ctx.Date,
		Vulns:  vulns,
	}

	for _, sev := range []finding.Severity{
		finding.Critical, finding.High, finding.Medium, finding.Low, finding.Info,
	} {
		n := 0
		for _, f := range vulns {
			if f.Severity == sev {
				n++
			}
		}
		if n > 0 {
			data.Severities = append(data.Severities, severityCount{
				Label: severityLabels[sev],
				Count: n,
			})
		}
	}

	data.Categories = groupByCategory(vulns)
	return data
}

// groupByCategory buckets findings per category, sorts each bucket by
// severity (critical first, arrival order within a level), and orders
// the buckets by their worst finding.
func groupByCategory(vulns []finding.Finding) []categoryGroup {
	index := make(map[string]int)
	var groups []categoryGroup

	for _, f := range vulns {
		name := f.Category
		if name == "" {
			name = "Uncategorized"
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			group := categoryGroup{Name: name}
			if ref, ok := defaults.OWASPForCategory(name); ok {
				group.OWASPCode = ref.Code
				group.OWASPURL = ref.URL
			}
			groups = append(groups, group)
		}
		groups[i].Findings = append(groups[i].Findings, f)
	}

	for i := range groups {
		finding.SortBySeverity(groups[i].Findings)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Findings[0].Severity.Score() > groups[j].Findings[0].Severity.Score()
	})
	return groups
}
