// This file contains OWASP Top 10 2021 reference data - the SINGLE SOURCE
// OF TRUTH for OWASP codes, names, and URLs used by reports.
//
// Usage:
//
//	code := defaults.OWASPByCategory["Injection"]   // "A03:2021"
//	url := defaults.OWASPTop10[code].URL            // "https://owasp.org/..."
package defaults

// OWASPCategory is an OWASP Top 10 2021 category with its metadata.
type OWASPCategory struct {
	Code     string // e.g., "A03:2021"
	Name     string // e.g., "Injection"
	FullName string // e.g., "A03:2021 - Injection"
	URL      string // Official OWASP URL
}

// OWASPTop10 contains all OWASP Top 10 2021 categories indexed by code.
var OWASPTop10 = map[string]OWASPCategory{
	"A01:2021": {
		Code:     "A01:2021",
		Name:     "Broken Access Control",
		FullName: "A01:2021 - Broken Access Control",
		URL:      "https://owasp.org/Top10/A01_2021-Broken_Access_Control/",
	},
	"A02:2021": {
		Code:     "A02:2021",
		Name:     "Cryptographic Failures",
		FullName: "A02:2021 - Cryptographic Failures",
		URL:      "https://owasp.org/Top10/A02_2021-Cryptographic_Failures/",
	},
	"A03:2021": {
		Code:     "A03:2021",
		Name:     "Injection",
		FullName: "A03:2021 - Injection",
		URL:      "https://owasp.org/Top10/A03_2021-Injection/",
	},
	"A04:2021": {
		Code:     "A04:2021",
		Name:     "Insecure Design",
		FullName: "A04:2021 - Insecure Design",
		URL:      "https://owasp.org/Top10/A04_2021-Insecure_Design/",
	},
	"A05:2021": {
		Code:     "A05:2021",
		Name:     "Security Misconfiguration",
		FullName: "A05:2021 - Security Misconfiguration",
		URL:      "https://owasp.org/Top10/A05_2021-Security_Misconfiguration/",
	},
	"A06:2021": {
		Code:     "A06:2021",
		Name:     "Vulnerable and Outdated Components",
		FullName: "A06:2021 - Vulnerable and Outdated Components",
		URL:      "https://owasp.org/Top10/A06_2021-Vulnerable_and_Outdated_Components/",
	},
	"A07:2021": {
		Code:     "A07:2021",
		Name:     "Identification and Authentication Failures",
		FullName: "A07:2021 - Identification and Authentication Failures",
		URL:      "https://owasp.org/Top10/A07_2021-Identification_and_Authentication_Failures/",
	},
	"A08:2021": {
		Code:     "A08:2021",
		Name:     "Software and Data Integrity Failures",
		FullName: "A08:2021 - Software and Data Integrity Failures",
		URL:      "https://owasp.org/Top10/A08_2021-Software_and_Data_Integrity_Failures/",
	},
	"A09:2021": {
		Code:     "A09:2021",
		Name:     "Security Logging and Monitoring Failures",
		FullName: "A09:2021 - Security Logging and Monitoring Failures",
		URL:      "https://owasp.org/Top10/A09_2021-Security_Logging_and_Monitoring_Failures/",
	},
	"A10:2021": {
		Code:     "A10:2021",
		Name:     "Server-Side Request Forgery",
		FullName: "A10:2021 - Server-Side Request Forgery (SSRF)",
		URL:      "https://owasp.org/Top10/A10_2021-Server-Side_Request_Forgery_%28SSRF%29/",
	},
}

// OWASPByCategory maps triage category names to OWASP Top 10 2021 codes.
// Information Disclosure maps to A01:2021, which owns CWE-200.
// Uncategorized and Other have no code.
var OWASPByCategory = map[string]string{
	"Injection":                 "A03:2021",
	"Broken Access Control":     "A01:2021",
	"Cryptographic Failures":    "A02:2021",
	"Security Misconfiguration": "A05:2021",
	"Vulnerable and Outdated Components":         "A06:2021",
	"Identification and Authentication Failures": "A07:2021",
	"SSRF":                   "A10:2021",
	"Information Disclosure": "A01:2021",
}

// OWASPForCategory returns the OWASP reference for a triage category.
// The second return is false when the category has no OWASP mapping.
func OWASPForCategory(category string) (OWASPCategory, bool) {
	code, ok := OWASPByCategory[category]
	if !ok {
		return OWASPCategory{}, false
	}
	cat, ok := OWASPTop10[code]
	return cat, ok
}
