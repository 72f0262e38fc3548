// Package strategy defines the per-jurisdiction hook bundle the lifecycle
// controller drives, and the registry that resolves jurisdiction ids to
// cached strategy instances.
package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/situsdata/ownertrace/browser"
	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/models"
)

// Env is everything a hook needs for one attempt. The session is owned by
// the lifecycle controller; hooks never close it.
type Env struct {
	Session browser.Session
	Profile *config.JurisdictionProfile
	Request *models.ScrapeRequest

	// Identifier is the transformed record key.
	Identifier string

	// Timeout bounds each blocking operation a hook performs.
	Timeout time.Duration
}

// Locator resolves a named locator from the profile. A missing name is a
// configuration defect surfaced as MISSING_REQUIRED_FIELD.
func (e *Env) Locator(name string) (string, error) {
	loc, ok := e.Profile.Locators[name]
	if !ok || loc == "" {
		return "", models.NewMissingRequiredField(name + " locator")
	}
	return loc, nil
}

// Hooks are the four variant points of the fixed lifecycle. Navigate and
// Extract are mandatory; Query and AwaitStable are optional. Every phase is
// independently overridable so no strategy ever re-implements the pipeline.
type Hooks struct {
	// Navigate opens either the generic search page or a deep link built
	// from the transformed identifier.
	Navigate func(ctx context.Context, env *Env) error

	// Query types the identifier into a search form and submits it. Nil
	// for sites reached by deep link alone; the phase is skipped.
	Query func(ctx context.Context, env *Env) error

	// AwaitStable overrides the profile's readiness condition. Nil means
	// the controller waits per the profile.
	AwaitStable func(ctx context.Context, env *Env) error

	// Extract reads raw text from the declared locators and returns a
	// best-effort record candidate.
	Extract func(ctx context.Context, env *Env) (*models.PropertyRecord, error)
}

// Strategy binds a jurisdiction id to its hooks. Instances live for the
// process lifetime once resolved and are owned by the registry cache.
type Strategy struct {
	JurisdictionID string
	Hooks          Hooks
}

// Builder constructs a strategy for a jurisdiction. Builders are registered
// explicitly at startup; no runtime code loading.
type Builder func(profile *config.JurisdictionProfile) *Strategy

// Registry resolves jurisdiction ids to cached strategy instances.
type Registry struct {
	mu       sync.RWMutex
	profiles *config.ProfileSet
	builders map[string]Builder
	cache    map[string]*Strategy
}

// NewRegistry creates a Registry over the given profile set.
func NewRegistry(profiles *config.ProfileSet) *Registry {
	return &Registry{
		profiles: profiles,
		builders: make(map[string]Builder),
		cache:    make(map[string]*Strategy),
	}
}

// Register binds a builder to a jurisdiction id. Startup only.
func (r *Registry) Register(jurisdictionID string, b Builder) {
	r.mu.Lock()
	r.builders[jurisdictionID] = b
	r.mu.Unlock()
}

// Resolve returns the strategy for a jurisdiction, constructing and caching
// it on first use. Unknown jurisdictions fail with COUNTY_NOT_FOUND and
// disabled ones with COUNTY_DISABLED before any session is opened. A built
// strategy missing a mandatory hook is a configuration defect raised here,
// never deferred into a scrape attempt.
func (r *Registry) Resolve(jurisdictionID string) (*Strategy, error) {
	profile, ok := r.profiles.Get(jurisdictionID)
	if !ok {
		return nil, models.NewCountyNotFound(jurisdictionID)
	}
	if !profile.Enabled {
		return nil, models.NewCountyDisabled(jurisdictionID)
	}

	r.mu.RLock()
	cached, hit := r.cache[jurisdictionID]
	builder, registered := r.builders[jurisdictionID]
	r.mu.RUnlock()
	if hit {
		return cached, nil
	}
	if !registered {
		return nil, models.NewCountyNotFound(jurisdictionID)
	}

	// Built outside the lock: constructing twice and discarding one
	// duplicate is harmless, but once a value is cached every caller sees
	// that same instance.
	built := builder(profile)
	if built == nil || built.Hooks.Navigate == nil || built.Hooks.Extract == nil {
		return nil, fmt.Errorf("strategy %q is malformed: navigate and extract hooks are mandatory", jurisdictionID)
	}
	built.JurisdictionID = jurisdictionID

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[jurisdictionID]; ok {
		return existing, nil
	}
	r.cache[jurisdictionID] = built
	return built, nil
}

// Reset clears the strategy cache. Test isolation only.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]*Strategy)
	r.mu.Unlock()
}
