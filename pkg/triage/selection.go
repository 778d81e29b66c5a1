package triage

// Selection is the per-session triage state: identifiers marked for
// scanning and hosts marked as false positives. It is never persisted;
// a new session starts empty.
type Selection struct {
	selected   map[string]struct{}
	order      []string
	suppressed map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{
		selected:   make(map[string]struct{}),
		suppressed: make(map[string]struct{}),
	}
}

// Select marks identifiers for scanning, preserving first-seen order.
func (s *Selection) Select(ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.selected[id]; ok {
			continue
		}
		s.selected[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// Deselect removes an identifier from the scan set.
func (s *Selection) Deselect(id string) {
	if _, ok := s.selected[id]; !ok {
		return
	}
	delete(s.selected, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Selected returns the identifiers marked for scanning in selection
// order.
func (s *Selection) Selected() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Suppress marks hosts as false positives for report assembly.
func (s *Selection) Suppress(hosts ...string) {
	for _, h := range hosts {
		if h != "" {
			s.suppressed[h] = struct{}{}
		}
	}
}

// Unsuppress clears the false-positive mark from a host.
func (s *Selection) Unsuppress(host string) {
	delete(s.suppressed, host)
}

// SuppressedSet returns the suppressed host set. The returned map is a
// copy; mutating it does not affect the selection.
func (s *Selection) SuppressedSet() map[string]struct{} {
	out := make(map[string]struct{}, len(s.suppressed))
	for h := range s.suppressed {
		out[h] = struct{}{}
	}
	return out
}
