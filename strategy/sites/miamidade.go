package sites

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/normalize"
	"github.com/situsdata/ownertrace/strategy"
)

// Miami-Dade County, FL. Folio lookups go through the search form; an
// ambiguous folio lands on a results list instead of a record page. Owners
// render as table rows with a label column.
func miamiDadeBuilder(profile *config.JurisdictionProfile) *strategy.Strategy {
	return &strategy.Strategy{
		Hooks: strategy.Hooks{
			Navigate: navigateSearchPage,
			Query: func(ctx context.Context, env *strategy.Env) error {
				if err := typeAndSubmit(ctx, env); err != nil {
					return models.Classify(err, models.ErrSearchFailed, "folio search failed")
				}
				return settle(ctx, 250*time.Millisecond)
			},
			AwaitStable: awaitLocator("owner"),
			Extract: func(ctx context.Context, env *strategy.Env) (*models.PropertyRecord, error) {
				// A result list means the folio matched more than one
				// record; never guess which one.
				if loc, ok := env.Profile.Locators["result_list"]; ok {
					marker, err := env.Session.Locate(ctx, loc)
					if err != nil {
						return nil, err
					}
					if marker != nil {
						return nil, models.NewMultipleResultsFound(
							"folio search returned a result list instead of a record page")
					}
				}

				ownerLoc, err := env.Locator("owner")
				if err != nil {
					return nil, err
				}
				ownerEl, err := env.Session.Locate(ctx, ownerLoc)
				if err != nil {
					return nil, err
				}
				var owners []string
				if ownerEl != nil {
					markup, err := ownerEl.HTML()
					if err != nil {
						return nil, err
					}
					owners = ownerTableRows(markup)
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

// ownerTableRows pulls one owner per table row, first cell only; the second
// cell carries a percentage-of-ownership column we do not want.
func ownerTableRows(markup string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return normalize.BlockLines(markup)
	}

	var owners []string
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").First()
		for _, line := range normalize.BlockLines(cell.Text()) {
			owners = append(owners, line)
		}
	})
	if len(owners) == 0 {
		// Not a table after all; fall back to flattening the block.
		return normalize.BlockLines(markup)
	}
	return owners
}
