package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// severityOrder is the display order for severity breakdowns.
var severityOrder = []string{"critical", "high", "medium", "low", "info"}

// PrintAssetResult prints one discovered asset as a live result line:
//
//	shop.example.com [200] [Shop Portal] [nginx, php] [NEW]
//
// The title comes from the probed host and is sanitized for the
// terminal. Zero status codes (asset never probed) are omitted.
func PrintAssetResult(host string, statusCode int, title string, tech []string, isNew bool) {
	if IsSilent() {
		return
	}

	var out strings.Builder
	out.WriteString("  ")
	out.WriteString(ConfigValueStyle.Render(host))

	if statusCode > 0 {
		out.WriteString(" ")
		out.WriteString(BracketStyle.Render("["))
		out.WriteString(StatusCodeStyle(statusCode).Render(fmt.Sprintf("%d", statusCode)))
		out.WriteString(BracketStyle.Render("]"))
	}

	if title != "" {
		out.WriteString(" ")
		out.WriteString(BracketStyle.Render("["))
		out.WriteString(SubtitleStyle.Render(SanitizeString(truncate(title, 40))))
		out.WriteString(BracketStyle.Render("]"))
	}

	if len(tech) > 0 {
		out.WriteString(" ")
		out.WriteString(BracketStyle.Render("["))
		out.WriteString(StatLabelStyle.Render(strings.Join(tech, ", ")))
		out.WriteString(BracketStyle.Render("]"))
	}

	if isNew {
		out.WriteString(" ")
		out.WriteString(NewMarkerStyle.Render("NEW"))
	}

	fmt.Fprintln(os.Stderr, out.String())
}

// PrintFindingResult prints one scanner finding as a live result line:
//
//	[high] [sqli-detect] shop.example.com [/login]
func PrintFindingResult(severity, templateID, host, matchedAt string) {
	if IsSilent() {
		return
	}

	var out strings.Builder
	out.WriteString("  ")
	out.WriteString(BracketStyle.Render("["))
	out.WriteString(SeverityStyle(severity).Render(strings.ToLower(severity)))
	out.WriteString(BracketStyle.Render("] "))

	out.WriteString(BracketStyle.Render("["))
	out.WriteString(CategoryStyle.Render(templateID))
	out.WriteString(BracketStyle.Render("] "))

	out.WriteString(ConfigValueStyle.Render(host))

	if matchedAt != "" {
		out.WriteString(" ")
		out.WriteString(BracketStyle.Render("["))
		out.WriteString(StatLabelStyle.Render(SanitizeString(matchedAt)))
		out.WriteString(BracketStyle.Render("]"))
	}

	fmt.Fprintln(os.Stderr, out.String())
}

// RunSummary holds the counts shown in the end-of-run box.
type RunSummary struct {
	Target     string
	Assets     int
	NewAssets  int
	Skipped    int
	Findings   int
	Suppressed int
	BySeverity map[string]int
	Duration   time.Duration
	ExitReason string
}

// PrintRunSummary prints the summary box to stderr.
func PrintRunSummary(s RunSummary) {
	if IsSilent() {
		return
	}
	FprintRunSummary(os.Stderr, s)
}

// FprintRunSummary writes the end-of-run summary box to w.
func FprintRunSummary(w io.Writer, s RunSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, SectionStyle.Render("> Run Summary"))
	fmt.Fprintln(w, DividerStyle.Render(strings.Repeat("-", 75)))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s %s\n\n",
		ConfigLabelStyle.Render("Target:"),
		URLStyle.Render(s.Target),
	)

	const boxWidth = 50
	border := "+" + strings.Repeat("-", boxWidth-2) + "+"

	// Fixed-width rows: label column 18, value fills the rest. Rune
	// count approximates visible width; values here are short ASCII.
	printRow := func(label, value string, valueStyle lipgloss.Style) {
		const labelW = 18
		const totalInner = boxWidth - 4

		labelPadded := label
		for len(labelPadded) < labelW {
			labelPadded += " "
		}
		valuePadded := value
		for len([]rune(valuePadded)) < totalInner-labelW {
			valuePadded += " "
		}

		fmt.Fprintf(w, "  |  %s%s|\n",
			StatLabelStyle.Render(labelPadded),
			valueStyle.Render(valuePadded),
		)
	}

	fmt.Fprintln(w, BracketStyle.Render("  "+border))
	printRow("Assets:", fmt.Sprintf("%d", s.Assets), StatValueStyle)
	printRow("New:", fmt.Sprintf("%d", s.NewAssets), lipgloss.NewStyle().Bold(true).Foreground(Secondary))
	printRow("Skipped lines:", fmt.Sprintf("%d", s.Skipped), StatValueStyle)

	fmt.Fprintln(w, BracketStyle.Render("  "+border))
	printRow("Findings:", fmt.Sprintf("%d", s.Findings), StatValueStyle)
	for _, sev := range severityOrder {
		if n := s.BySeverity[sev]; n > 0 {
			printRow("  "+sev+":", fmt.Sprintf("%d", n),
				lipgloss.NewStyle().Bold(true).Foreground(SeverityColor(sev)))
		}
	}
	if s.Suppressed > 0 {
		printRow("Suppressed:", fmt.Sprintf("%d", s.Suppressed), StatLabelStyle)
	}

	fmt.Fprintln(w, BracketStyle.Render("  "+border))
	printRow("Duration:", formatClock(s.Duration), StatValueStyle)
	if s.ExitReason != "" {
		printRow("Exit reason:", s.ExitReason, StatValueStyle)
	}
	fmt.Fprintln(w, BracketStyle.Render("  "+border))

	fmt.Fprintln(w)
	urgent := s.BySeverity["critical"] + s.BySeverity["high"]
	switch {
	case urgent > 0:
		fmt.Fprintln(w, FailStyle.Render(fmt.Sprintf("  [x] %d critical/high findings need review", urgent)))
	case s.Findings > 0:
		fmt.Fprintln(w, WarnStyle.Render(fmt.Sprintf("  [!] %d findings, none above medium", s.Findings)))
	default:
		fmt.Fprintln(w, SuccessStyle.Render("  [+] no findings"))
	}
	fmt.Fprintln(w)
}

// RenderTable renders headers and rows as a bordered table for listing
// commands (archive, history).
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Muted)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(Secondary).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// truncate shortens s to maxLen with an ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
