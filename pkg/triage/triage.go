// Package triage narrows a discovery run down to scan-worthy targets.
//
// Both operations here are pure views over the accumulated records:
// filtering by technology signature and flagging high-value surfaces.
// Neither touches the history store or launches processes; selection
// state lives in Selection and is discarded with the session.
package triage

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/finding"
)

// SensitiveKeywords is the fixed keyword set marking a high-value
// attack surface. Matching is a case-insensitive substring test against
// each tech tag.
var SensitiveKeywords = []string{"upload", "graphql", "auth", "login", "admin", "api"}

var fold = cases.Fold()

// FilterByTech returns the records whose tech stack contains token as a
// case-insensitive substring of any tag. An empty token is the identity
// view; records with an empty tech stack never match a non-empty token.
func FilterByTech(records []asset.Record, token string) []asset.Record {
	if strings.TrimSpace(token) == "" {
		return records
	}

	needle := fold.String(strings.TrimSpace(token))
	var out []asset.Record
	for _, r := range records {
		if techMatches(r.TechStack, needle) {
			out = append(out, r)
		}
	}
	return out
}

func techMatches(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.Contains(fold.String(tag), needle) {
			return true
		}
	}
	return false
}

// MarkSensitive sets the Sensitive flag on records whose any tech tag
// contains any of the SensitiveKeywords. Annotation only: no record is
// removed or reordered. Returns the number of records flagged.
func MarkSensitive(records []asset.Record) int {
	flagged := 0
	for i := range records {
		if isSensitive(records[i].TechStack) {
			records[i].Sensitive = true
			flagged++
		}
	}
	return flagged
}

func isSensitive(tags []string) bool {
	for _, tag := range tags {
		folded := fold.String(tag)
		for _, kw := range SensitiveKeywords {
			if strings.Contains(folded, kw) {
				return true
			}
		}
	}
	return false
}

// MarkFalsePositives sets the FalsePositive flag on findings whose host
// is in the suppressed set. The report assembler drops them; exports
// keep them, flagged, so the operator decision stays visible. Returns
// the number of findings marked.
func MarkFalsePositives(findings []finding.Finding, suppressed map[string]struct{}) int {
	marked := 0
	for i := range findings {
		if _, ok := suppressed[findings[i].Host]; ok {
			findings[i].FalsePositive = true
			marked++
		}
	}
	return marked
}
