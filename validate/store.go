package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/situsdata/ownertrace/models"
)

// Store persists saved regression cases as a JSON key-value file keyed by
// case id. It is safe for concurrent use; the whole file is rewritten on
// every mutation, which is fine at regression-suite scale.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store over the given file path. The file is created
// lazily on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) read() (map[string]models.TestCase, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]models.TestCase{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	cases := map[string]models.TestCase{}
	if len(data) == 0 {
		return cases, nil
	}
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", s.path, err)
	}
	return cases, nil
}

func (s *Store) write(cases map[string]models.TestCase) error {
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the store.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}

// List returns all cases in stable id order.
func (s *Store) List() ([]models.TestCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]models.TestCase, 0, len(cases))
	for _, tc := range cases {
		out = append(out, tc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns one case by id.
func (s *Store) Get(id string) (models.TestCase, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.read()
	if err != nil {
		return models.TestCase{}, false, err
	}
	tc, ok := cases[id]
	return tc, ok, nil
}

// Put inserts or replaces a case. The case must carry an id.
func (s *Store) Put(tc models.TestCase) error {
	if tc.ID == "" {
		return fmt.Errorf("store: test case has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.read()
	if err != nil {
		return err
	}
	cases[tc.ID] = tc
	return s.write(cases)
}

// Delete removes a case, reporting whether it existed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.read()
	if err != nil {
		return false, err
	}
	if _, ok := cases[id]; !ok {
		return false, nil
	}
	delete(cases, id)
	return true, s.write(cases)
}
