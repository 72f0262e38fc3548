package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/situsdata/ownertrace/browser"
	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/identifier"
	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/strategy"
)

// --- fakes ---

type fakeElement struct {
	text string
}

func (f *fakeElement) Text() (string, error) { return f.text, nil }
func (f *fakeElement) HTML() (string, error) { return f.text, nil }
func (f *fakeElement) Input(string) error    { return nil }
func (f *fakeElement) Click() error          { return nil }

type fakeSession struct {
	closes   int
	navErr   error
	waitErr  error
	elements map[string]string
}

func (f *fakeSession) Navigate(ctx context.Context, url string, wait browser.WaitCondition, timeout time.Duration) error {
	return f.navErr
}

func (f *fakeSession) Locate(ctx context.Context, locator string) (browser.Element, error) {
	text, ok := f.elements[locator]
	if !ok {
		return nil, nil
	}
	return &fakeElement{text: text}, nil
}

func (f *fakeSession) WaitVisible(ctx context.Context, locator string, timeout time.Duration) error {
	return f.waitErr
}

func (f *fakeSession) WaitStable(ctx context.Context, timeout time.Duration) error {
	return f.waitErr
}

func (f *fakeSession) Close() error {
	f.closes++
	return nil
}

type fakeDriver struct {
	opens   int
	session *fakeSession
	openErr error
}

func (f *fakeDriver) OpenSession(ctx context.Context, opts browser.OpenOptions) (browser.Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens++
	return f.session, nil
}

// --- fixture ---

const engineProfiles = `
jurisdictions:
  demo:
    display_name: "Demo County"
    target_url: "https://demo.test/record?id={id}"
    identifier_kinds: [parcel]
    locators:
      owner: "#owner"
      mailing_address: "#mail"
    wait: "stable"
    enabled: true
`

type fixture struct {
	driver   *fakeDriver
	registry *strategy.Registry
	engine   *Engine
}

func newFixture(t *testing.T, hooks strategy.Hooks) *fixture {
	t.Helper()
	profiles := config.NewProfileSet()
	if err := profiles.Load([]byte(engineProfiles)); err != nil {
		t.Fatal(err)
	}
	registry := strategy.NewRegistry(profiles)
	registry.Register("demo", func(p *config.JurisdictionProfile) *strategy.Strategy {
		return &strategy.Strategy{Hooks: hooks}
	})

	driver := &fakeDriver{session: &fakeSession{}}
	eng := New(driver, registry, profiles, identifier.NewRuleset(),
		config.ScraperConfig{DefaultTimeout: time.Second, MaxTimeout: time.Minute}, nil)
	return &fixture{driver: driver, registry: registry, engine: eng}
}

func demoRequest() *models.ScrapeRequest {
	return &models.ScrapeRequest{
		JurisdictionID:  "demo",
		IdentifierKind:  models.IdentifierParcel,
		IdentifierValue: "A-1",
	}
}

func okNavigate(ctx context.Context, env *strategy.Env) error { return nil }

func extractRecord(owners []string, address string) func(context.Context, *strategy.Env) (*models.PropertyRecord, error) {
	return func(ctx context.Context, env *strategy.Env) (*models.PropertyRecord, error) {
		return &models.PropertyRecord{OwnerNames: owners, MailingAddress: address}, nil
	}
}

// --- tests ---

func TestScrape_Success(t *testing.T) {
	fx := newFixture(t, strategy.Hooks{
		Navigate: okNavigate,
		Extract:  extractRecord([]string{"JOHN DOE", "JANE DOE"}, "1 MAIN ST\nHOUSTON TX 77002"),
	})

	outcome, err := fx.engine.Scrape(context.Background(), demoRequest())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if !outcome.Success() {
		t.Fatalf("expected success, got failure: %v", outcome.Err)
	}
	rec := outcome.Record
	if len(rec.OwnerNames) != 2 || rec.OwnerNames[0] != "JOHN DOE" {
		t.Errorf("owners = %v", rec.OwnerNames)
	}
	if rec.JurisdictionID != "demo" || rec.IdentifierValue != "A-1" || rec.IdentifierKind != models.IdentifierParcel {
		t.Errorf("record context not filled: %+v", rec)
	}
	if rec.ScrapedAt.IsZero() {
		t.Error("ScrapedAt not set")
	}
	if outcome.Metadata.JurisdictionID != "demo" || outcome.Metadata.EndTime.Before(outcome.Metadata.StartTime) {
		t.Errorf("metadata wrong: %+v", outcome.Metadata)
	}
	if fx.driver.session.closes != 1 {
		t.Errorf("session closed %d times, want 1", fx.driver.session.closes)
	}
}

func TestScrape_NoOwner_IsNoResultsFound(t *testing.T) {
	fx := newFixture(t, strategy.Hooks{
		Navigate: okNavigate,
		Extract:  extractRecord(nil, "1 MAIN ST"),
	})

	outcome, err := fx.engine.Scrape(context.Background(), demoRequest())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if outcome.Success() {
		t.Fatal("expected failure")
	}
	if outcome.Err.Kind != models.ErrNoResultsFound {
		t.Errorf("kind = %s, want NO_RESULTS_FOUND", outcome.Err.Kind)
	}
	if fx.driver.session.closes != 1 {
		t.Errorf("session closed %d times, want 1", fx.driver.session.closes)
	}
}

func TestScrape_OwnerWithoutAddress_IsExtractionFailed(t *testing.T) {
	fx := newFixture(t, strategy.Hooks{
		Navigate: okNavigate,
		Extract:  extractRecord([]string{"JOHN DOE"}, "  "),
	})

	outcome, err := fx.engine.Scrape(context.Background(), demoRequest())
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success() || outcome.Err.Kind != models.ErrExtractionFailed {
		t.Errorf("expected EXTRACTION_FAILED, got %+v", outcome)
	}
}

func TestScrape_ReleaseExactlyOnce_OnEveryPhaseFailure(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		hooks    strategy.Hooks
		navErr   error
		waitErr  error
		wantKind models.ErrorKind
	}{
		{
			name: "navigate fails",
			hooks: strategy.Hooks{
				Navigate: func(ctx context.Context, env *strategy.Env) error { return boom },
				Extract:  extractRecord([]string{"X"}, "Y"),
			},
			wantKind: models.ErrNavigationFailed,
		},
		{
			name: "navigate times out",
			hooks: strategy.Hooks{
				Navigate: func(ctx context.Context, env *strategy.Env) error { return context.DeadlineExceeded },
				Extract:  extractRecord([]string{"X"}, "Y"),
			},
			wantKind: models.ErrTimeout,
		},
		{
			name: "query fails",
			hooks: strategy.Hooks{
				Navigate: okNavigate,
				Query:    func(ctx context.Context, env *strategy.Env) error { return boom },
				Extract:  extractRecord([]string{"X"}, "Y"),
			},
			wantKind: models.ErrSearchFailed,
		},
		{
			name: "readiness wait fails",
			hooks: strategy.Hooks{
				Navigate: okNavigate,
				Extract:  extractRecord([]string{"X"}, "Y"),
			},
			waitErr:  context.DeadlineExceeded,
			wantKind: models.ErrPageLoadTimeout,
		},
		{
			name: "extract fails",
			hooks: strategy.Hooks{
				Navigate: okNavigate,
				Extract: func(ctx context.Context, env *strategy.Env) (*models.PropertyRecord, error) {
					return nil, boom
				},
			},
			wantKind: models.ErrExtractionFailed,
		},
		{
			name: "extract returns classified multiple results",
			hooks: strategy.Hooks{
				Navigate: okNavigate,
				Extract: func(ctx context.Context, env *strategy.Env) (*models.PropertyRecord, error) {
					return nil, models.NewMultipleResultsFound("result list")
				},
			},
			wantKind: models.ErrMultipleResultsFound,
		},
		{
			name: "extract panics",
			hooks: strategy.Hooks{
				Navigate: okNavigate,
				Extract: func(ctx context.Context, env *strategy.Env) (*models.PropertyRecord, error) {
					panic("strategy bug")
				},
			},
			wantKind: models.ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, tt.hooks)
			fx.driver.session.navErr = tt.navErr
			fx.driver.session.waitErr = tt.waitErr

			outcome, err := fx.engine.Scrape(context.Background(), demoRequest())
			if err != nil {
				t.Fatalf("Scrape returned error instead of outcome: %v", err)
			}
			if outcome.Success() {
				t.Fatal("expected failure outcome")
			}
			if outcome.Err.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", outcome.Err.Kind, tt.wantKind)
			}
			if fx.driver.session.closes != 1 {
				t.Errorf("session closed %d times, want exactly 1", fx.driver.session.closes)
			}
		})
	}
}

func TestScrape_UnknownJurisdiction_OpensNoSession(t *testing.T) {
	fx := newFixture(t, strategy.Hooks{Navigate: okNavigate, Extract: extractRecord([]string{"X"}, "Y")})

	req := demoRequest()
	req.JurisdictionID = "nowhere"
	outcome, err := fx.engine.Scrape(context.Background(), req)
	if outcome != nil {
		t.Error("expected no outcome for resolution failure")
	}
	var ce *models.ClassifiedError
	if !errors.As(err, &ce) || ce.Kind != models.ErrCountyNotFound {
		t.Errorf("expected COUNTY_NOT_FOUND, got %v", err)
	}
	if fx.driver.opens != 0 {
		t.Errorf("opened %d sessions, want 0", fx.driver.opens)
	}
}

func TestScrape_UnsupportedKind_OpensNoSession(t *testing.T) {
	fx := newFixture(t, strategy.Hooks{Navigate: okNavigate, Extract: extractRecord([]string{"X"}, "Y")})

	req := demoRequest()
	req.IdentifierKind = models.IdentifierFolio
	outcome, err := fx.engine.Scrape(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success() || outcome.Err.Kind != models.ErrInvalidIdentifierType {
		t.Errorf("expected INVALID_IDENTIFIER_TYPE, got %+v", outcome)
	}
	if fx.driver.opens != 0 {
		t.Errorf("opened %d sessions, want 0", fx.driver.opens)
	}
}

func TestScrape_TransformFailure_IsValidationError(t *testing.T) {
	profiles := config.NewProfileSet()
	if err := profiles.Load([]byte(engineProfiles)); err != nil {
		t.Fatal(err)
	}
	registry := strategy.NewRegistry(profiles)
	registry.Register("demo", func(p *config.JurisdictionProfile) *strategy.Strategy {
		return &strategy.Strategy{Hooks: strategy.Hooks{
			Navigate: okNavigate,
			Extract:  extractRecord([]string{"X"}, "Y"),
		}}
	})
	rules := identifier.NewRuleset()
	rules.Register("demo", identifier.ReorderSegments("-", []int{2, 1, 0}))

	driver := &fakeDriver{session: &fakeSession{}}
	eng := New(driver, registry, profiles, rules,
		config.ScraperConfig{DefaultTimeout: time.Second, MaxTimeout: time.Minute}, nil)

	outcome, err := eng.Scrape(context.Background(), demoRequest()) // "A-1" has 2 segments
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success() || outcome.Err.Kind != models.ErrValidation {
		t.Errorf("expected VALIDATION_ERROR, got %+v", outcome)
	}
	if driver.opens != 0 {
		t.Errorf("opened %d sessions, want 0", driver.opens)
	}
}

func TestScrape_OpenSessionFailure_IsClassifiedOutcome(t *testing.T) {
	fx := newFixture(t, strategy.Hooks{Navigate: okNavigate, Extract: extractRecord([]string{"X"}, "Y")})
	fx.driver.openErr = models.NewBrowserCrash("pool exhausted", nil)

	outcome, err := fx.engine.Scrape(context.Background(), demoRequest())
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success() || outcome.Err.Kind != models.ErrBrowserCrash {
		t.Errorf("expected BROWSER_CRASH, got %+v", outcome)
	}
}

func TestScrape_RecordsHealth(t *testing.T) {
	fx := newFixture(t, strategy.Hooks{
		Navigate: okNavigate,
		Extract:  extractRecord(nil, ""),
	})
	health := NewHealthMemory(time.Hour)
	defer health.Stop()
	fx.engine.health = health

	if _, err := fx.engine.Scrape(context.Background(), demoRequest()); err != nil {
		t.Fatal(err)
	}

	snap := health.Snapshot()
	if len(snap) != 1 || snap[0].JurisdictionID != "demo" || snap[0].Failures != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap[0].LastErrorKind != string(models.ErrNoResultsFound) {
		t.Errorf("last error kind = %q", snap[0].LastErrorKind)
	}
}
