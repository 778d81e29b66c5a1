package report

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/finding"
)

// builtinTemplate is the reference markdown report. Custom templates
// see the same data: .Target, .Date, .Vulns (arrival order), plus the
// precomputed .Severities ({Label, Count}, highest first) and
// .Categories ({Name, OWASPCode, OWASPURL, Findings}, worst first).
// Sprig functions are available, as are severityIcon and owaspLink.
var builtinTemplate = `# Security Assessment Report: {{ .Target }}

**Date:** {{ .Date }}
{{- if not .Vulns }}

No vulnerabilities were identified during this assessment.
{{- else }}

**Total findings:** {{ len .Vulns }}

| Severity | Count |
| --- | --- |
{{- range .Severities }}
| {{ .Label }} | {{ .Count }} |
{{- end }}
{{- range .Categories }}

## {{ .Name }}
{{- if .OWASPURL }}

Reference: [{{ .OWASPCode }}]({{ .OWASPURL }})
{{- end }}
{{- range .Findings }}

### {{ severityIcon (.Severity | toString) }} {{ .Template }}

- **Severity:** {{ .Severity | toString | title }}
- **Host:** {{ .Host }}
{{- if .MatchedAt }}
- **Matched at:** {{ .MatchedAt }}
{{- end }}
{{- if .Tags }}
- **Tags:** {{ .Tags | join ", " }}
{{- end }}
- **Remediation:** {{ .Remediation | default ` + strconv.Quote(finding.DefaultRemediation) + ` }}
{{- end }}
{{- end }}
{{- end }}
`

func parseTemplate(path string) (*template.Template, error) {
	content := builtinTemplate
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("report: read template: %w", err)
		}
		content = string(raw)
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["severityIcon"] = severityIcon
	funcMap["owaspLink"] = owaspLink

	tmpl, err := template.New("report").Funcs(funcMap).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("report: parse template: %w", err)
	}
	return tmpl, nil
}

// severityIcon returns a colored marker for a severity level.
func severityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	case "low":
		return "🟢"
	case "info":
		return "🔵"
	default:
		return "⚪"
	}
}

// owaspLink returns the OWASP Top 10 URL for a taxonomy category, or
// an empty string when the category has no mapping.
func owaspLink(category string) string {
	if ref, ok := defaults.OWASPForCategory(category); ok {
		return ref.URL
	}
	return ""
}
