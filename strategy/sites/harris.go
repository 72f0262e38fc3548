package sites

import (
	"context"
	"regexp"

	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/normalize"
	"github.com/situsdata/ownertrace/strategy"
)

// Harris County, TX. Records open directly from a 13-digit account number,
// so there is no query phase. Owner and mailing address share one block;
// the owner line(s) come first, the mailing address is everything after.
var harrisAccountRe = regexp.MustCompile(`^\d{13}$`)

func harrisBuilder(profile *config.JurisdictionProfile) *strategy.Strategy {
	return &strategy.Strategy{
		Hooks: strategy.Hooks{
			Navigate: func(ctx context.Context, env *strategy.Env) error {
				if !harrisAccountRe.MatchString(env.Identifier) {
					return models.NewInvalidDataFormat(
						"harris account numbers are 13 digits after normalization", nil)
				}
				return navigateDeepLink(ctx, env)
			},
			Extract: func(ctx context.Context, env *strategy.Env) (*models.PropertyRecord, error) {
				owners, err := locatorLines(ctx, env, "owner")
				if err != nil {
					return nil, err
				}
				addressLines, err := locatorLines(ctx, env, "mailing_address")
				if err != nil {
					return nil, err
				}

				merged := normalize.MergeAddresses(addressLines)
				return &models.PropertyRecord{
					OwnerNames:     owners,
					MailingAddress: merged,
					Address:        structureAddress(merged),
				}, nil
			},
		},
	}
}
