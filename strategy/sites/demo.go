package sites

import (
	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/strategy"
)

// demo is a synthetic jurisdiction for smoke-testing a deployment end to
// end: the full lifecycle runs against whatever fixture page the profile's
// target_url points at, extracting through the standard owner and
// mailing_address locators. Ships disabled; enable it in the profile file
// when verifying an environment.
func demoBuilder(profile *config.JurisdictionProfile) *strategy.Strategy {
	return &strategy.Strategy{
		Hooks: strategy.Hooks{
			Navigate: navigateDeepLink,
			Extract:  extractLocatorRecord,
		},
	}
}
