package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/situsdata/ownertrace/models"
)

// healthEntry accumulates rolling counters for one jurisdiction.
type healthEntry struct {
	successes     int
	failures      int
	lastErrorKind models.ErrorKind
	expiresAt     time.Time
}

// HealthMemory remembers recent attempt outcomes per jurisdiction so the
// health endpoint can flag sites that have started failing. Entries expire
// after the configured TTL and are pruned periodically.
type HealthMemory struct {
	mu    sync.Mutex
	store map[string]*healthEntry
	ttl   time.Duration
	done  chan struct{}
}

// NewHealthMemory creates a HealthMemory with the given TTL and starts a
// background goroutine that prunes expired entries every hour.
func NewHealthMemory(ttl time.Duration) *HealthMemory {
	hm := &HealthMemory{
		store: make(map[string]*healthEntry),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go hm.cleanupLoop()
	return hm
}

// RecordSuccess notes a successful attempt for a jurisdiction.
func (hm *HealthMemory) RecordSuccess(jurisdictionID string) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	e := hm.entry(jurisdictionID)
	e.successes++
}

// RecordFailure notes a failed attempt and its classification.
func (hm *HealthMemory) RecordFailure(jurisdictionID string, kind models.ErrorKind) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	e := hm.entry(jurisdictionID)
	e.failures++
	e.lastErrorKind = kind
}

// entry returns the live entry for a jurisdiction, resetting expired ones.
// Caller holds the lock.
func (hm *HealthMemory) entry(id string) *healthEntry {
	e, ok := hm.store[id]
	if !ok || time.Now().After(e.expiresAt) {
		e = &healthEntry{}
		hm.store[id] = e
	}
	e.expiresAt = time.Now().Add(hm.ttl)
	return e
}

// Snapshot returns the current counters in stable jurisdiction order.
func (hm *HealthMemory) Snapshot() []models.JurisdictionHealth {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	now := time.Now()
	out := make([]models.JurisdictionHealth, 0, len(hm.store))
	for id, e := range hm.store {
		if now.After(e.expiresAt) {
			continue
		}
		out = append(out, models.JurisdictionHealth{
			JurisdictionID: id,
			Successes:      e.successes,
			Failures:       e.failures,
			LastErrorKind:  string(e.lastErrorKind),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JurisdictionID < out[j].JurisdictionID })
	return out
}

// Stop terminates the background cleanup goroutine.
func (hm *HealthMemory) Stop() {
	close(hm.done)
}

// cleanupLoop runs every hour, deleting expired entries.
func (hm *HealthMemory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-hm.done:
			return
		case <-ticker.C:
			now := time.Now()
			hm.mu.Lock()
			for id, e := range hm.store {
				if now.After(e.expiresAt) {
					delete(hm.store, id)
				}
			}
			hm.mu.Unlock()
		}
	}
}
