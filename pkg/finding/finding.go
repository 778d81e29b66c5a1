package finding

import "sort"

// DefaultRemediation is the placeholder used when the scanner supplies
// no remediation guidance for a finding.
const DefaultRemediation = "No remediation provided."

// Finding is one normalized vulnerability finding from the second-stage
// scanner. Host joins back to the discovered asset identifier; Category
// is derived by the taxonomy package, and FalsePositive is set only by
// operator triage, never by the scanner itself.
type Finding struct {
	Template      string   `json:"template"`
	TemplateID    string   `json:"template_id,omitempty"`
	Severity      Severity `json:"severity"`
	Host          string   `json:"host"`
	MatchedAt     string   `json:"matched_at,omitempty"`
	Timestamp     string   `json:"timestamp,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Category      string   `json:"category,omitempty"`
	Remediation   string   `json:"remediation,omitempty"`
	FalsePositive bool     `json:"false_positive,omitempty"`
}

// SortBySeverity orders findings highest severity first, preserving
// arrival order within the same severity level.
func SortBySeverity(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Score() > findings[j].Severity.Score()
	})
}

// CountBySeverity tallies findings per severity level.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int, 5)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
