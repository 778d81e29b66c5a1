// Package history provides file-based persistence of asset identifiers
// seen across discovery runs. Novelty detection diffs the current run's
// identifiers against this store, so growth is union-only: an identifier
// once recorded is never removed by the pipeline.
//
// Data is stored as a single JSON array of strings for portability and
// simplicity. Writes go through a temp-file rename, which keeps the file
// consistent under crashes of this process but does not guard against
// concurrent runs; one run at a time is assumed.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/recontriage/recontriage/pkg/jsonutil"
)

// ErrPersist indicates a history read or write failure. Persistence
// failures are non-fatal to a run: novelty tagging still completes on
// the in-memory view. Callers should use errors.Is().
var ErrPersist = errors.New("history: persist failure")

// Store manages the durable identifier set backing novelty detection.
type Store struct {
	mu   sync.RWMutex
	path string
}

// NewStore creates a store backed by the JSON file at path. The file is
// created lazily on first merge; a missing file reads as an empty set.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the identifier set. A missing file yields an empty set with
// no error. Read or decode failures yield an empty set plus an error
// wrapping ErrPersist, so the run can proceed on an empty history view.
func (s *Store) Load() (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (map[string]struct{}, error) {
	set := make(map[string]struct{})

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return set, fmt.Errorf("%w: read %s: %v", ErrPersist, s.path, err)
	}

	var ids []string
	if err := jsonutil.Unmarshal(data, &ids); err != nil {
		return set, fmt.Errorf("%w: decode %s: %v", ErrPersist, s.path, err)
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Diff returns the subset of current identifiers absent from the store.
// A load failure is returned alongside the diff so callers can report it
// and still use the result (computed against the empty set).
func (s *Store) Diff(current []string) (map[string]struct{}, error) {
	known, err := s.Load()

	fresh := make(map[string]struct{})
	for _, id := range current {
		if _, ok := known[id]; !ok {
			fresh[id] = struct{}{}
		}
	}
	return fresh, err
}

// Merge unions ids into the store and persists atomically: marshal,
// write a temp file, rename over the original. Read-merge-write; never
// drops identifiers already recorded.
func (s *Store) Merge(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known, err := s.loadLocked()
	if err != nil {
		// Unreadable history: rebuild from the current set rather than
		// losing the run. The bad file gets overwritten.
		known = make(map[string]struct{})
	}
	for _, id := range ids {
		known[id] = struct{}{}
	}

	merged := make([]string, 0, len(known))
	for id := range known {
		merged = append(merged, id)
	}
	sort.Strings(merged)

	return s.writeLocked(merged)
}

// writeLocked persists the identifier list using an atomic temp+rename.
func (s *Store) writeLocked(ids []string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", ErrPersist, dir, err)
		}
	}

	data, err := jsonutil.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersist, tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // Clean up orphaned temp file
		return fmt.Errorf("%w: rename %s: %v", ErrPersist, s.path, err)
	}
	return nil
}

// All returns the stored identifiers sorted ascending.
func (s *Store) All() ([]string, error) {
	known, err := s.Load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of stored identifiers.
func (s *Store) Count() (int, error) {
	known, err := s.Load()
	if err != nil {
		return 0, err
	}
	return len(known), nil
}

// Clear removes the backing file. Operator action only; the pipeline
// itself never shrinks the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %s: %v", ErrPersist, s.path, err)
	}
	return nil
}
