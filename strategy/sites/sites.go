// Package sites holds the per-jurisdiction strategies. Everything in here is
// deliberately fragile, site-coupled configuration: locators and navigation
// flows track each county site's current markup and break when it changes.
package sites

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/situsdata/ownertrace/browser"
	"github.com/situsdata/ownertrace/identifier"
	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/normalize"
	"github.com/situsdata/ownertrace/strategy"
)

// Register binds every supported jurisdiction's strategy builder and
// identifier transform. Called once at startup.
func Register(reg *strategy.Registry, rules *identifier.Ruleset) {
	reg.Register("harris-tx", harrisBuilder)
	rules.Register("harris-tx", identifier.TrimSpace(), identifier.StripNonNumeric())

	reg.Register("miamidade-fl", miamiDadeBuilder)
	rules.Register("miamidade-fl", identifier.TrimSpace(), identifier.RemoveSeparator("-"))

	reg.Register("leon-fl", leonBuilder)
	// Parcel keys print as SEC-TWN-RNG-BLK-LOT but the site wants
	// township and section swapped around range, digits only.
	rules.Register("leon-fl", identifier.TrimSpace(),
		identifier.ReorderSegments("-", []int{2, 1, 0, 3, 4}),
		identifier.StripNonNumeric())

	reg.Register("demo", demoBuilder)
	rules.Register("demo", identifier.TrimSpace())
}

// deepLink substitutes the transformed identifier into a URL template.
func deepLink(template, id string) string {
	return strings.ReplaceAll(template, "{id}", url.QueryEscape(id))
}

// navigateDeepLink is the shared navigate hook for sites reachable by a
// computed record URL.
func navigateDeepLink(ctx context.Context, env *strategy.Env) error {
	wait, err := browser.ParseWait(env.Profile.Wait, env.Profile.Locators)
	if err != nil {
		return err
	}
	return env.Session.Navigate(ctx, deepLink(env.Profile.TargetURL, env.Identifier), wait, env.Timeout)
}

// navigateSearchPage opens the generic search page.
func navigateSearchPage(ctx context.Context, env *strategy.Env) error {
	wait, err := browser.ParseWait(env.Profile.Wait, env.Profile.Locators)
	if err != nil {
		return err
	}
	return env.Session.Navigate(ctx, env.Profile.SearchURL, wait, env.Timeout)
}

// locatorLines reads a named locator and flattens its markup into lines.
// A missing element yields (nil, nil).
func locatorLines(ctx context.Context, env *strategy.Env, name string) ([]string, error) {
	loc, err := env.Locator(name)
	if err != nil {
		return nil, err
	}
	el, err := env.Session.Locate(ctx, loc)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, nil
	}
	markup, err := el.HTML()
	if err != nil {
		return nil, err
	}
	return normalize.BlockLines(markup), nil
}

// extractLocatorRecord is the default extract hook: the "owner" locator
// holds the owner name block and "mailing_address" the address block.
func extractLocatorRecord(ctx context.Context, env *strategy.Env) (*models.PropertyRecord, error) {
	owners, err := locatorLines(ctx, env, "owner")
	if err != nil {
		return nil, err
	}
	addressLines, err := locatorLines(ctx, env, "mailing_address")
	if err != nil {
		return nil, err
	}

	return &models.PropertyRecord{
		OwnerNames:     owners,
		MailingAddress: normalize.MergeAddresses(addressLines),
	}, nil
}

// cityStateZipRe matches the final "CITY ST 12345[-6789]" line of a US
// mailing block.
var cityStateZipRe = regexp.MustCompile(`^(.+?),?\s+([A-Z]{2})\s+(\d{5}(?:-\d{4})?)$`)

// structureAddress splits a merged mailing block into street/city/state/zip
// when its last line has the conventional shape. Returns nil when it does
// not; callers keep the raw block either way.
func structureAddress(merged string) *models.MailingAddress {
	lines := strings.Split(merged, "\n")
	if len(lines) < 2 {
		return nil
	}
	m := cityStateZipRe.FindStringSubmatch(lines[len(lines)-1])
	if m == nil {
		return nil
	}
	return &models.MailingAddress{
		Street: strings.Join(lines[:len(lines)-1], " "),
		City:   m[1],
		State:  m[2],
		Zip:    m[3],
	}
}

// awaitLocator returns an AwaitStable hook that waits for a named locator to
// appear, for sites whose result page keeps mutating after load.
func awaitLocator(name string) func(ctx context.Context, env *strategy.Env) error {
	return func(ctx context.Context, env *strategy.Env) error {
		loc, err := env.Locator(name)
		if err != nil {
			return err
		}
		return env.Session.WaitVisible(ctx, loc, env.Timeout)
	}
}

// typeAndSubmit fills the search input with the identifier and submits.
func typeAndSubmit(ctx context.Context, env *strategy.Env) error {
	inputLoc, err := env.Locator("search_input")
	if err != nil {
		return err
	}
	submitLoc, err := env.Locator("search_submit")
	if err != nil {
		return err
	}

	input, err := env.Session.Locate(ctx, inputLoc)
	if err != nil {
		return err
	}
	if input == nil {
		return models.NewSearchFailed("search input not present on page", nil)
	}
	if err := input.Input(env.Identifier); err != nil {
		return err
	}

	submit, err := env.Session.Locate(ctx, submitLoc)
	if err != nil {
		return err
	}
	if submit == nil {
		return models.NewSearchFailed("search submit button not present on page", nil)
	}
	return submit.Click()
}

// settle gives a just-submitted form a moment before the readiness wait.
func settle(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
