package sites

import (
	"context"
	"regexp"

	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/strategy"
)

// Leon County, FL. Deep-link site; the record URL wants the reordered,
// digits-only parcel key produced by the registered transform.
var leonParcelRe = regexp.MustCompile(`^\d{10,}$`)

func leonBuilder(profile *config.JurisdictionProfile) *strategy.Strategy {
	return &strategy.Strategy{
		Hooks: strategy.Hooks{
			Navigate: func(ctx context.Context, env *strategy.Env) error {
				if !leonParcelRe.MatchString(env.Identifier) {
					return models.NewInvalidDataFormat(
						"leon parcel keys are at least 10 digits after reordering", nil)
				}
				return navigateDeepLink(ctx, env)
			},
			AwaitStable: awaitLocator("owner"),
			Extract:     extractLocatorRecord,
		},
	}
}
