package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/situsdata/ownertrace/models"
)

// JurisdictionProfile is the read-only configuration for one county-level
// data source. Profiles are loaded once at startup and never mutated at
// runtime.
type JurisdictionProfile struct {
	ID          string `yaml:"-"`
	DisplayName string `yaml:"display_name"`
	Region      string `yaml:"region"`

	// TargetURL is the deep-link template; strategies substitute the
	// transformed identifier into it.
	TargetURL string `yaml:"target_url"`

	// SearchURL is the generic search page, for sites without deep links.
	SearchURL string `yaml:"search_url"`

	// IdentifierKinds lists the record-key kinds the site can look up.
	IdentifierKinds []models.IdentifierKind `yaml:"identifier_kinds"`

	// Locators maps strategy-declared names ("owner", "mailing_address",
	// "search_input", ...) to site-specific locator strings.
	Locators map[string]string `yaml:"locators"`

	// Wait is the readiness condition: "load", "stable", or
	// "element:<locator name>".
	Wait string `yaml:"wait"`

	// TimeoutMs bounds every blocking phase of an attempt. Zero means the
	// scraper-wide default.
	TimeoutMs int `yaml:"timeout_ms"`

	// Stealth enables anti-bot-detection evasions for this site.
	Stealth bool `yaml:"stealth"`

	Enabled bool `yaml:"enabled"`
}

// Timeout returns the per-phase deadline, falling back to def when the
// profile does not set one and capping at max.
func (p *JurisdictionProfile) Timeout(def, max time.Duration) time.Duration {
	d := time.Duration(p.TimeoutMs) * time.Millisecond
	if d <= 0 {
		d = def
	}
	if max > 0 && d > max {
		d = max
	}
	return d
}

// Supports reports whether the profile accepts the given identifier kind.
func (p *JurisdictionProfile) Supports(kind models.IdentifierKind) bool {
	for _, k := range p.IdentifierKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// profileFile is the on-disk schema.
type profileFile struct {
	Jurisdictions map[string]*JurisdictionProfile `yaml:"jurisdictions"`
}

// ProfileSet is the process-wide jurisdiction-profile cache: loaded once,
// read-only thereafter, with an explicit Reset for test isolation.
type ProfileSet struct {
	mu       sync.RWMutex
	profiles map[string]*JurisdictionProfile
	order    []string
}

// NewProfileSet creates an empty ProfileSet.
func NewProfileSet() *ProfileSet {
	return &ProfileSet{profiles: make(map[string]*JurisdictionProfile)}
}

// LoadFile reads and validates the profile file. Any malformed or missing
// mandatory field fails here, at load time, never at scrape time.
func (s *ProfileSet) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("profiles: read %s: %w", path, err)
	}
	return s.Load(data)
}

// Load parses and validates profiles from YAML bytes, replacing any
// previously loaded set.
func (s *ProfileSet) Load(data []byte) error {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("profiles: parse: %w", err)
	}
	if len(file.Jurisdictions) == 0 {
		return fmt.Errorf("profiles: no jurisdictions defined")
	}

	profiles := make(map[string]*JurisdictionProfile, len(file.Jurisdictions))
	order := make([]string, 0, len(file.Jurisdictions))
	for id, p := range file.Jurisdictions {
		p.ID = id
		if err := validateProfile(p); err != nil {
			return fmt.Errorf("profiles: %s: %w", id, err)
		}
		profiles[id] = p
		order = append(order, id)
	}
	sort.Strings(order)

	s.mu.Lock()
	s.profiles = profiles
	s.order = order
	s.mu.Unlock()
	return nil
}

func validateProfile(p *JurisdictionProfile) error {
	if p.DisplayName == "" {
		return fmt.Errorf("display_name is required")
	}
	if p.TargetURL == "" && p.SearchURL == "" {
		return fmt.Errorf("one of target_url or search_url is required")
	}
	if len(p.IdentifierKinds) == 0 {
		return fmt.Errorf("at least one identifier kind is required")
	}
	for _, k := range p.IdentifierKinds {
		if !k.Valid() {
			return fmt.Errorf("unknown identifier kind %q", k)
		}
	}
	if p.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must not be negative")
	}
	switch {
	case p.Wait == "" || p.Wait == "load" || p.Wait == "stable":
	case strings.HasPrefix(p.Wait, "element:"):
		name := strings.TrimPrefix(p.Wait, "element:")
		if _, ok := p.Locators[name]; !ok {
			return fmt.Errorf("wait references unknown locator %q", name)
		}
	default:
		return fmt.Errorf("unknown wait condition %q", p.Wait)
	}
	return nil
}

// Get returns the profile for a jurisdiction id.
func (s *ProfileSet) Get(id string) (*JurisdictionProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	return p, ok
}

// List returns all profiles in stable id order.
func (s *ProfileSet) List() []*JurisdictionProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*JurisdictionProfile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.profiles[id])
	}
	return out
}

// Reset clears the loaded set. Test isolation only.
func (s *ProfileSet) Reset() {
	s.mu.Lock()
	s.profiles = make(map[string]*JurisdictionProfile)
	s.order = nil
	s.mu.Unlock()
}
