package validate

import (
	"context"
	"log/slog"
	"time"

	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/normalize"
)

// Scraper is the slice of the engine the runner needs.
type Scraper interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeOutcome, error)
}

// Runner certifies strategies by replaying saved cases against the live
// sites. Cases run strictly one at a time: the attempts share a single
// browser-driver resource.
type Runner struct {
	scraper Scraper

	// OnResult, when set, observes each TestResult as it completes.
	OnResult func(models.TestResult)
}

// NewRunner creates a Runner over the given scraper.
func NewRunner(scraper Scraper) *Runner {
	return &Runner{scraper: scraper}
}

// Run executes cases sequentially, preserving input order in the results.
func (r *Runner) Run(ctx context.Context, cases []models.TestCase) *models.BatchResult {
	start := time.Now()
	result := &models.BatchResult{
		Total:   len(cases),
		Results: make([]models.TestResult, 0, len(cases)),
	}

	for _, tc := range cases {
		tr := r.RunCase(ctx, tc)
		if tr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, tr)
		if r.OnResult != nil {
			r.OnResult(tr)
		}
	}

	result.TotalDurationMs = time.Since(start).Milliseconds()
	slog.Info("batch run finished",
		"total", result.Total,
		"passed", result.Passed,
		"failed", result.Failed,
		"durationMs", result.TotalDurationMs,
	)
	return result
}

// RunCase executes one saved case. A scrape failure yields a failed result
// with zero assertions and the classified error surfaced.
func (r *Runner) RunCase(ctx context.Context, tc models.TestCase) models.TestResult {
	start := time.Now()
	tr := models.TestResult{
		TestCaseID: tc.ID,
		Assertions: []models.Assertion{},
	}

	outcome, err := r.scraper.Scrape(ctx, &models.ScrapeRequest{
		JurisdictionID:  tc.JurisdictionID,
		IdentifierKind:  tc.IdentifierKind,
		IdentifierValue: tc.IdentifierValue,
	})
	switch {
	case err != nil:
		tr.Error = models.Classify(err, models.ErrUnknown, "scrape failed before an outcome existed").ToDetail()
	case !outcome.Success():
		tr.Outcome = outcome
		tr.Error = outcome.Err.ToDetail()
	default:
		tr.Outcome = outcome
		rec := outcome.Record
		tr.Assertions = append(tr.Assertions,
			Assert("owner_name", tc.ExpectedOwner, normalize.MergeOwners(rec.OwnerNames)),
			Assert("mailing_address", tc.ExpectedAddress, rec.MailingAddress),
		)
		tr.Passed = true
		for _, a := range tr.Assertions {
			if !a.Passed {
				tr.Passed = false
				break
			}
		}
	}

	tr.DurationMs = time.Since(start).Milliseconds()
	return tr
}
