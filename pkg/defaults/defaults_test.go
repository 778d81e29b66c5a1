package defaults_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/recontriage/recontriage/pkg/defaults"
)

// TestVersionFormat ensures the version is valid semver.
func TestVersionFormat(t *testing.T) {
	semverPattern := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9]+)?$`)
	if !semverPattern.MatchString(defaults.Version) {
		t.Errorf("defaults.Version (%s) is not valid semver", defaults.Version)
	}
}

func TestUserAgent(t *testing.T) {
	plain := defaults.UserAgent("")
	if plain != defaults.ToolName+"/"+defaults.Version {
		t.Errorf("UserAgent(\"\") = %q", plain)
	}

	ctx := defaults.UserAgent("doctor")
	if !strings.Contains(ctx, defaults.Version) || !strings.Contains(ctx, "doctor") {
		t.Errorf("UserAgent(doctor) = %q, missing version or context", ctx)
	}
}

func TestOWASPForCategory(t *testing.T) {
	cat, ok := defaults.OWASPForCategory("Injection")
	if !ok {
		t.Fatal("Injection should map to an OWASP category")
	}
	if cat.Code != "A03:2021" {
		t.Errorf("Injection code = %s, want A03:2021", cat.Code)
	}
	if cat.URL == "" {
		t.Error("mapped category has no URL")
	}

	if _, ok := defaults.OWASPForCategory("Other"); ok {
		t.Error("Other must not map to an OWASP category")
	}
	if _, ok := defaults.OWASPForCategory("Uncategorized"); ok {
		t.Error("Uncategorized must not map to an OWASP category")
	}
}

// TestOWASPMappingTargetsExist ensures every mapped code resolves to
// reference data.
func TestOWASPMappingTargetsExist(t *testing.T) {
	for category, code := range defaults.OWASPByCategory {
		if _, ok := defaults.OWASPTop10[code]; !ok {
			t.Errorf("category %q maps to unknown code %q", category, code)
		}
	}
}
