// Package taxonomy maps raw scanner tags onto a fixed vulnerability
// category scheme for report grouping.
//
// Matching is deliberately ordered: categories are tried highest
// priority first, and within a category an exact tag match is consulted
// before any substring match. A tag like "auth-bypass" can textually hit
// several categories, so the priority order is part of the contract and
// must not be reordered.
package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/recontriage/recontriage/pkg/finding"
)

// Category names returned by Categorize.
const (
	CategoryInjection        = "Injection"
	CategoryAccessControl    = "Broken Access Control"
	CategoryCryptoFailures   = "Cryptographic Failures"
	CategoryMisconfiguration = "Security Misconfiguration"
	CategoryOutdated         = "Vulnerable and Outdated Components"
	CategoryAuthFailures     = "Identification and Authentication Failures"
	CategorySSRF             = "SSRF"
	CategoryDisclosure       = "Information Disclosure"

	// CategoryUncategorized is returned for empty or absent tag input.
	CategoryUncategorized = "Uncategorized"

	// CategoryOther is returned when tags exist but match nothing.
	CategoryOther = "Other"
)

type rule struct {
	name     string
	keywords []string
}

// rules holds the category priority order. First match wins; both the
// order of rules and the keyword sets are fixed contract.
var rules = []rule{
	{CategoryInjection, []string{"sqli", "xss", "lfi", "rce", "injection", "ssti", "crlf"}},
	{CategoryAccessControl, []string{"auth", "bypass", "idor", "privesc", "access-control"}},
	{CategoryCryptoFailures, []string{"ssl", "tls", "crypto", "weak-cipher"}},
	{CategoryMisconfiguration, []string{"config", "misconfig", "default-login", "exposure"}},
	{CategoryOutdated, []string{"cve", "outdated", "version"}},
	{CategoryAuthFailures, []string{"login", "brute-force", "weak-password"}},
	{CategorySSRF, []string{"ssrf"}},
	{CategoryDisclosure, []string{"exposure", "disclosure", "sensitive", "token", "key"}},
}

// fallbackSubstrings drive the secondary pass when no rule matched.
var fallbackSubstrings = []string{"outdated", "deprecated", "cve"}

var fold = cases.Fold()

// Categorize maps a tag list to exactly one category name. Empty input
// yields CategoryUncategorized; input that matches no rule yields
// CategoryOther. The function is pure and total.
func Categorize(tags []string) string {
	if len(tags) == 0 {
		return CategoryUncategorized
	}

	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		normalized = append(normalized, fold.String(t))
	}

	for _, r := range rules {
		// Exact tag match first, then substring, within this category.
		for _, tag := range normalized {
			for _, k := range r.keywords {
				if tag == k {
					return r.name
				}
			}
		}
		for _, tag := range normalized {
			for _, k := range r.keywords {
				if strings.Contains(tag, k) {
					return r.name
				}
			}
		}
	}

	for _, tag := range normalized {
		for _, s := range fallbackSubstrings {
			if strings.Contains(tag, s) {
				return CategoryOutdated
			}
		}
	}

	return CategoryOther
}

// CategorizeString accepts the scanner's comma-separated tag form.
func CategorizeString(tags string) string {
	if strings.TrimSpace(tags) == "" {
		return CategoryUncategorized
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return Categorize(out)
}

// Categories returns all category names in priority order, with the two
// fallback names last. Useful for stable report grouping.
func Categories() []string {
	out := make([]string, 0, len(rules)+2)
	for _, r := range rules {
		out = append(out, r.name)
	}
	return append(out, CategoryUncategorized, CategoryOther)
}

// CategoryCount is one row of a category summary.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summarize tallies findings per category in priority order, skipping
// categories with no findings. Findings with an empty Category field are
// categorized from their tags on the fly.
func Summarize(findings []finding.Finding) []CategoryCount {
	counts := make(map[string]int, len(rules)+2)
	for _, f := range findings {
		cat := f.Category
		if cat == "" {
			cat = Categorize(f.Tags)
		}
		counts[cat]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for _, name := range Categories() {
		if n := counts[name]; n > 0 {
			out = append(out, CategoryCount{Category: name, Count: n})
		}
	}
	return out
}
