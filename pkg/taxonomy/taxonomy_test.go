package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recontriage/recontriage/pkg/finding"
)

func TestCategorizePriorityOrder(t *testing.T) {
	// "cve-2021-1234" substring-matches Vulnerable and Outdated Components
	// (priority 5) while "auth-bypass" substring-matches Broken Access
	// Control (priority 2). Priority 2 must win.
	got := Categorize([]string{"cve-2021-1234", "auth-bypass"})
	assert.Equal(t, CategoryAccessControl, got)
}

func TestCategorizeExactBeforeSubstring(t *testing.T) {
	// "exposure" is an exact keyword of Security Misconfiguration
	// (priority 4) and also of Information Disclosure (priority 8).
	assert.Equal(t, CategoryMisconfiguration, Categorize([]string{"exposure"}))
}

func TestCategorizeSecondaryPass(t *testing.T) {
	// No exact or substring rule hit except via the fallback substrings.
	assert.Equal(t, CategoryOutdated, Categorize([]string{"outdated-jquery"}))
	assert.Equal(t, CategoryOutdated, Categorize([]string{"deprecated-api-endpoint"}))
}

func TestCategorizeEmptyInput(t *testing.T) {
	assert.Equal(t, CategoryUncategorized, Categorize(nil))
	assert.Equal(t, CategoryUncategorized, Categorize([]string{}))
	assert.Equal(t, CategoryUncategorized, CategorizeString(""))
	assert.Equal(t, CategoryUncategorized, CategorizeString("   "))
}

func TestCategorizeNoMatch(t *testing.T) {
	assert.Equal(t, CategoryOther, Categorize([]string{"fuzzing", "wordpress"}))
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	assert.Equal(t, CategoryInjection, Categorize([]string{"SQLI"}))
	assert.Equal(t, CategoryInjection, Categorize([]string{"Blind-XSS"}))
}

func TestCategorizeCommaSeparated(t *testing.T) {
	assert.Equal(t, CategoryInjection, CategorizeString("wordpress, sqli , detect"))
	assert.Equal(t, CategoryCryptoFailures, CategorizeString("tls"))
}

func TestCategorizeTotal(t *testing.T) {
	known := map[string]bool{}
	for _, c := range Categories() {
		known[c] = true
	}

	inputs := [][]string{
		nil,
		{},
		{"sqli"},
		{"idor"},
		{"ssl"},
		{"default-login"},
		{"cve"},
		{"brute-force"},
		{"ssrf"},
		{"disclosure"},
		{"outdated-lib"},
		{"nothing-matches-here"},
		{"", ""},
	}
	for _, in := range inputs {
		got := Categorize(in)
		assert.Truef(t, known[got], "Categorize(%v) = %q, not a known category", in, got)
	}
}

func TestCategoriesOrder(t *testing.T) {
	cats := Categories()
	assert.Equal(t, CategoryInjection, cats[0])
	assert.Equal(t, CategoryDisclosure, cats[7])
	assert.Equal(t, CategoryUncategorized, cats[8])
	assert.Equal(t, CategoryOther, cats[9])
}

func TestSummarize(t *testing.T) {
	findings := []finding.Finding{
		{Template: "a", Category: CategoryInjection},
		{Template: "b", Category: CategoryInjection},
		{Template: "c", Category: CategoryOther},
		{Template: "d", Tags: []string{"ssrf"}}, // categorized on the fly
	}

	summary := Summarize(findings)
	assert.Equal(t, []CategoryCount{
		{Category: CategoryInjection, Count: 2},
		{Category: CategorySSRF, Count: 1},
		{Category: CategoryOther, Count: 1},
	}, summary)
}
