package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Version information, overridable at build time via ldflags:
// go build -ldflags "-X github.com/recontriage/recontriage/pkg/ui.Version=1.5.0"
var (
	Version   = "1.4.2"
	BuildDate = "2026-08-12"
	Commit    = "dev"
)

const Website = "github.com/recontriage/recontriage"

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses banners,
// progress, and result lines; errors still print).
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled.
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled.
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// ASCII art banner, slant style like the recon tooling this front-ends.
const bannerArt = `
                                         __          _
   _____ ___   _____ ____   ____        / /_  _____ (_) ____ _ ____ _ ___
  / ___// _ \ / ___// __ \ / __ \ ____ / __/ / ___// / / __ '// __ '// _ \
 / /   /  __// /__ / /_/ // / / //___// /_  / /   / / / /_/ // /_/ //  __/
/_/    \___/ \___/ \____//_/ /_/      \__/ /_/   /_/  \__,_/ \__, / \___/
                                                            /____/`

const bannerSeparator = "________________________________________________"

// gradientSteps returns n hex colors fading from the brand purple to
// teal, one per banner line.
func gradientSteps(n int) []string {
	from := [3]int{0x7D, 0x56, 0xF4}
	to := [3]int{0x00, 0xD4, 0xAA}
	if n < 2 {
		return []string{"#7D56F4"}
	}
	steps := make([]string, n)
	for i := range steps {
		t := float64(i) / float64(n-1)
		r := from[0] + int(t*float64(to[0]-from[0]))
		g := from[1] + int(t*float64(to[1]-from[1]))
		b := from[2] + int(t*float64(to[2]-from[2]))
		steps[i] = fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}
	return steps
}

// PrintBanner prints the application banner to stderr with a top-down
// purple-to-teal gradient. Color degrades with the terminal profile and
// disappears entirely under -no-color or NO_COLOR.
func PrintBanner() {
	if IsSilent() {
		return
	}
	out := termenv.NewOutput(os.Stderr)
	profile := out.EnvColorProfile()
	if IsNoColor() {
		profile = termenv.Ascii
	}

	lines := strings.Split(strings.Trim(bannerArt, "\n"), "\n")
	colors := gradientSteps(len(lines))
	for i, line := range lines {
		fmt.Fprintln(out, out.String(line).Foreground(profile.Color(colors[i])).Bold())
	}

	fmt.Fprintf(os.Stderr, "%32sv%s\n", "", VersionStyle.Render(Version))
	fmt.Fprintf(os.Stderr, "\n\t\t%s\n\n", HelpStyle.Render(Website))
}

// PrintMiniBanner prints the minimal banner (ffuf-style rule lines).
func PrintMiniBanner() {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "%s\n\n recontriage v%s\n%s\n\n",
		BannerStyle.Render(bannerSeparator), Version, BannerStyle.Render(bannerSeparator))
}

// printOption prints one configuration option in ffuf/nuclei style:
//
//	:: Option              : Value
func printOption(name, value string) {
	fmt.Fprintf(os.Stderr, " :: %-20s : %s\n", ConfigLabelStyle.Render(name), ConfigValueStyle.Render(value))
}

// configOrder is the display order for the pre-run config banner.
// Options absent from it print afterwards in map order.
var configOrder = []string{
	"Target", "Input", "Engine", "Scanner", "Config",
	"Min Severity", "Categories", "Tech Filter", "Suppress",
	"History", "Archive", "Report Dir", "Template",
	"Output", "Metrics", "Tracing", "Timeout",
}

// PrintConfigBanner prints the effective settings before a run starts.
// Empty values are skipped.
func PrintConfigBanner(options map[string]string) {
	if IsSilent() {
		return
	}
	printed := make(map[string]bool)
	for _, name := range configOrder {
		if value, ok := options[name]; ok && value != "" {
			printOption(name, value)
			printed[name] = true
		}
	}
	for name, value := range options {
		if !printed[name] && value != "" {
			printOption(name, value)
		}
	}
	fmt.Fprintf(os.Stderr, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintDivider prints a stylized divider to stderr.
func PrintDivider() {
	fmt.Fprintln(os.Stderr, DividerStyle.Render(strings.Repeat("-", 75)))
}

// PrintSection prints a section header to stderr.
func PrintSection(title string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, SectionStyle.Render("> "+title))
	PrintDivider()
}

// PrintConfigLine prints a single aligned key/value line.
func PrintConfigLine(key, value string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s\n",
		ConfigLabelStyle.Render(key+":"),
		ConfigValueStyle.Render(value),
	)
}

// BracketPart is one piece of a nuclei-style bracketed line.
type BracketPart struct {
	Text  string
	Style lipgloss.Style
}

// SeverityBracket styles a severity badge part.
func SeverityBracket(severity string) BracketPart {
	return BracketPart{
		Text:  strings.ToLower(severity),
		Style: SeverityStyle(severity),
	}
}

// CategoryBracket styles a triage-category part.
func CategoryBracket(category string) BracketPart {
	return BracketPart{Text: category, Style: CategoryStyle}
}

// TextBracket styles a plain text part.
func TextBracket(text string) BracketPart {
	return BracketPart{
		Text:  text,
		Style: lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
	}
}

// MutedBracket styles a de-emphasized part.
func MutedBracket(text string) BracketPart {
	return BracketPart{
		Text:  text,
		Style: lipgloss.NewStyle().Foreground(Muted),
	}
}

// PrintBracketedInfo prints nuclei-style bracketed metadata:
// [high] [sqli-detect] https://shop.example.com
func PrintBracketedInfo(parts ...BracketPart) {
	if IsSilent() {
		return
	}
	var output strings.Builder
	for _, part := range parts {
		output.WriteString(BracketStyle.Render("["))
		output.WriteString(part.Style.Render(part.Text))
		output.WriteString(BracketStyle.Render("] "))
	}
	fmt.Fprintln(os.Stderr, output.String())
}

// PrintHelp prints contextual help to stderr.
func PrintHelp(text string) {
	fmt.Fprintln(os.Stderr, HelpStyle.Render("  [i] "+text))
}

// PrintSuccess prints a success message to stderr.
func PrintSuccess(message string) {
	fmt.Fprintln(os.Stderr, SuccessStyle.Render("  [+] "+message))
}

// PrintError prints an error message to stderr. Not gated on silent
// mode; errors always surface.
func PrintError(message string) {
	fmt.Fprintln(os.Stderr, FailStyle.Render("  [x] "+message))
}

// PrintWarning prints a warning message to stderr.
func PrintWarning(message string) {
	fmt.Fprintln(os.Stderr, WarnStyle.Render("  [!] "+message))
}

// PrintInfo prints an informational message to stderr.
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s\n", SpinnerStyle.Render("*"), message)
}
