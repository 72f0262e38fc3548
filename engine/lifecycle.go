// Package engine drives the fixed extraction lifecycle shared by every
// jurisdiction: session acquisition, navigation, optional query, readiness
// wait, extraction, and record validation, with classified failures and
// guaranteed session release on every exit path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/situsdata/ownertrace/browser"
	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/identifier"
	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/strategy"
)

// Engine is the lifecycle controller. It is safe for concurrent use; each
// attempt owns its session exclusively and runs its phases strictly in
// order.
type Engine struct {
	driver   browser.Driver
	registry *strategy.Registry
	profiles *config.ProfileSet
	rules    *identifier.Ruleset
	cfg      config.ScraperConfig
	health   *HealthMemory
}

// New wires a lifecycle controller.
func New(driver browser.Driver, registry *strategy.Registry, profiles *config.ProfileSet,
	rules *identifier.Ruleset, cfg config.ScraperConfig, health *HealthMemory) *Engine {
	return &Engine{
		driver:   driver,
		registry: registry,
		profiles: profiles,
		rules:    rules,
		cfg:      cfg,
		health:   health,
	}
}

// Scrape runs one extraction attempt. The returned error is non-nil only
// for resolution failures (unknown or disabled jurisdiction, malformed
// strategy registration), which happen before any session is opened; every
// other condition, including timeouts and crashes, is a failure outcome.
func (e *Engine) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeOutcome, error) {
	strat, err := e.registry.Resolve(req.JurisdictionID)
	if err != nil {
		return nil, err
	}
	profile, ok := e.profiles.Get(req.JurisdictionID)
	if !ok {
		// Resolve already checked; a vanished profile is a config defect.
		return nil, fmt.Errorf("profile for %q disappeared after resolution", req.JurisdictionID)
	}

	start := time.Now()
	record, cerr := e.attempt(ctx, req, profile, strat)
	end := time.Now()

	meta := models.AttemptMetadata{
		JurisdictionID:  req.JurisdictionID,
		IdentifierValue: req.IdentifierValue,
		IdentifierKind:  req.IdentifierKind,
		StartTime:       start,
		EndTime:         end,
		DurationMs:      end.Sub(start).Milliseconds(),
	}

	if cerr != nil {
		if cerr.JurisdictionID == "" {
			cerr.WithContext(req.JurisdictionID, req.IdentifierValue)
		}
		if e.health != nil {
			e.health.RecordFailure(req.JurisdictionID, cerr.Kind)
		}
		slog.Warn("scrape attempt failed",
			"jurisdiction", req.JurisdictionID,
			"identifier", req.IdentifierValue,
			"kind", cerr.Kind,
			"durationMs", meta.DurationMs,
		)
		return models.FailureOutcome(cerr, meta), nil
	}

	if e.health != nil {
		e.health.RecordSuccess(req.JurisdictionID)
	}
	slog.Info("scrape attempt succeeded",
		"jurisdiction", req.JurisdictionID,
		"identifier", req.IdentifierValue,
		"owners", len(record.OwnerNames),
		"durationMs", meta.DurationMs,
	)
	return models.SuccessOutcome(record, meta), nil
}

// attempt executes the state sequence for one attempt. Every failure comes
// back classified; a panic in a hook or the driver is converted to
// UNKNOWN_ERROR rather than escaping the lifecycle boundary.
//
// States: Idle → SessionAcquired → Navigated → [Queried] → Stable →
// Extracted → Validated → Closed. The deferred session release runs exactly
// once on every path out of this function.
func (e *Engine) attempt(ctx context.Context, req *models.ScrapeRequest,
	profile *config.JurisdictionProfile, strat *strategy.Strategy) (record *models.PropertyRecord, cerr *models.ClassifiedError) {

	defer func() {
		if r := recover(); r != nil {
			record = nil
			cerr = models.NewUnknownError("panic inside scrape attempt", fmt.Errorf("%v", r))
		}
	}()

	if !req.IdentifierKind.Valid() {
		return nil, models.NewInvalidIdentifierType(
			fmt.Sprintf("unknown identifier kind %q", req.IdentifierKind))
	}
	if !profile.Supports(req.IdentifierKind) {
		return nil, models.NewInvalidIdentifierType(
			fmt.Sprintf("jurisdiction %q does not support %q lookups", req.JurisdictionID, req.IdentifierKind))
	}

	transformed, err := e.rules.Transform(req.JurisdictionID, req.IdentifierValue)
	if err != nil {
		return nil, models.Classify(err, models.ErrValidation, "identifier transform failed")
	}

	timeout := profile.Timeout(e.cfg.DefaultTimeout, e.cfg.MaxTimeout)

	// Idle → SessionAcquired.
	session, err := e.driver.OpenSession(ctx, browser.OpenOptions{Stealth: profile.Stealth})
	if err != nil {
		return nil, models.Classify(err, models.ErrBrowserLaunchFailed, "failed to open browser session")
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			slog.Warn("session release failed",
				"jurisdiction", req.JurisdictionID, "error", closeErr)
		}
	}()

	env := &strategy.Env{
		Session:    session,
		Profile:    profile,
		Request:    req,
		Identifier: transformed,
		Timeout:    timeout,
	}

	// SessionAcquired → Navigated.
	if err := runPhase(ctx, timeout, env, strat.Hooks.Navigate); err != nil {
		return nil, models.Classify(err, models.ErrNavigationFailed, "navigation to target failed")
	}

	// Navigated → Queried (skipped when the strategy has no query hook).
	if strat.Hooks.Query != nil {
		if err := runPhase(ctx, timeout, env, strat.Hooks.Query); err != nil {
			return nil, models.Classify(err, models.ErrSearchFailed, "search submission failed")
		}
	}

	// Queried/Navigated → Stable.
	if err := e.awaitStable(ctx, timeout, env, strat); err != nil {
		return nil, classifyWait(err)
	}

	// Stable → Extracted.
	extractCtx, cancel := context.WithTimeout(ctx, timeout)
	candidate, err := strat.Hooks.Extract(extractCtx, env)
	cancel()
	if err != nil {
		return nil, models.Classify(err, models.ErrExtractionFailed, "extraction failed")
	}

	// Extracted → Validated: the minimum viable record rule.
	return validateCandidate(candidate, req)
}

// runPhase invokes one hook under its own deadline derived from the
// profile timeout.
func runPhase(ctx context.Context, timeout time.Duration, env *strategy.Env,
	hook func(context.Context, *strategy.Env) error) error {
	phaseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return hook(phaseCtx, env)
}

// awaitStable waits for the strategy's readiness condition: the custom hook
// when declared, otherwise the profile's wait condition.
func (e *Engine) awaitStable(ctx context.Context, timeout time.Duration,
	env *strategy.Env, strat *strategy.Strategy) error {
	if strat.Hooks.AwaitStable != nil {
		return runPhase(ctx, timeout, env, strat.Hooks.AwaitStable)
	}

	wait, err := browser.ParseWait(env.Profile.Wait, env.Profile.Locators)
	if err != nil {
		return err
	}
	if wait.Kind == browser.WaitElement {
		return env.Session.WaitVisible(ctx, wait.Locator, timeout)
	}
	return env.Session.WaitStable(ctx, timeout)
}

// classifyWait maps readiness-wait failures. A deadline here is the page
// never becoming ready, which is PAGE_LOAD_TIMEOUT rather than the generic
// TIMEOUT that Classify would produce.
func classifyWait(err error) *models.ClassifiedError {
	var ce *models.ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewPageLoadTimeout("page did not become ready in time", err)
	}
	return models.NewPageLoadTimeout("readiness wait failed", err)
}

// validateCandidate applies the minimum viable record rule: at least one
// non-empty owner name and a non-empty mailing address, or no record at
// all. A missing owner is a designed NO_RESULTS_FOUND failure; an owner
// without an address is EXTRACTION_FAILED. Partial records never escape.
func validateCandidate(candidate *models.PropertyRecord, req *models.ScrapeRequest) (*models.PropertyRecord, *models.ClassifiedError) {
	if candidate == nil {
		return nil, models.NewNoResultsFound("strategy produced no record candidate")
	}

	var owners []string
	for _, name := range candidate.OwnerNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			owners = append(owners, trimmed)
		}
	}
	if len(owners) == 0 {
		return nil, models.NewNoResultsFound("no owner name found on record page")
	}
	if strings.TrimSpace(candidate.MailingAddress) == "" {
		return nil, models.NewExtractionFailed("owner found but mailing address is missing", nil)
	}

	candidate.OwnerNames = owners
	candidate.JurisdictionID = req.JurisdictionID
	candidate.IdentifierValue = req.IdentifierValue
	candidate.IdentifierKind = req.IdentifierKind
	candidate.ScrapedAt = time.Now().UTC()
	return candidate, nil
}
