// Package asset defines the discovered-asset model shared by the
// ingestion, triage, and history packages.
//
// Records arrive as one JSON object per stdout line of the discovery
// engine. The identifier is the stable join key across the history
// store, the triage filter, and the vulnerability scan selection.
package asset

// Record is one discovered asset. Wire fields mirror the discovery
// engine's output; IsNew and Sensitive are computed downstream and never
// arrive on the wire.
type Record struct {
	Identifier   string   `json:"subdomain"`
	DiscoveredAt string   `json:"timestamp,omitempty"`
	StatusCode   int      `json:"status_code,omitempty"`
	Title        string   `json:"title,omitempty"`
	TechStack    []string `json:"tech_stack,omitempty"`

	// Enrichment fields some engine versions emit. Passed through to
	// exports and reports, never interpreted here.
	Source   string            `json:"source,omitempty"`
	ASN      string            `json:"asn,omitempty"`
	Org      string            `json:"org,omitempty"`
	Versions map[string]string `json:"versions,omitempty"`

	// IsNew marks identifiers absent from the history store at run start.
	IsNew bool `json:"is_new,omitempty"`

	// Sensitive marks records whose tech tags hit the high-value surface
	// keywords. Set by triage, annotation only.
	Sensitive bool `json:"sensitive,omitempty"`
}

// Identifiers returns the unique identifiers of records in arrival order.
// Duplicate records are legal within a run; the set view is what history
// diffing and scan target selection operate on.
func Identifiers(records []Record) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		if r.Identifier == "" {
			continue
		}
		if _, ok := seen[r.Identifier]; ok {
			continue
		}
		seen[r.Identifier] = struct{}{}
		out = append(out, r.Identifier)
	}
	return out
}

// MarkNew sets IsNew on every record whose identifier is in newSet.
func MarkNew(records []Record, newSet map[string]struct{}) {
	for i := range records {
		if _, ok := newSet[records[i].Identifier]; ok {
			records[i].IsNew = true
		}
	}
}
