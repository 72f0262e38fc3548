package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/situsdata/ownertrace/models"
)

// slowScraper succeeds on every case after a small pause, so a run stays in
// flight long enough to be observed concurrently.
type slowScraper struct{}

func (slowScraper) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeOutcome, error) {
	time.Sleep(time.Millisecond)
	return models.SuccessOutcome(&models.PropertyRecord{
		OwnerNames:     []string{"SMITH JOHN"},
		MailingAddress: "1 MAIN ST\nHOUSTON TX 77002",
	}, models.AttemptMetadata{}), nil
}

func runCases(n int) []models.TestCase {
	cases := make([]models.TestCase, n)
	for i := range cases {
		cases[i] = models.TestCase{
			ID:              "case-" + string(rune('a'+i)),
			JurisdictionID:  "demo",
			IdentifierKind:  models.IdentifierParcel,
			IdentifierValue: "1",
			ExpectedOwner:   "SMITH JOHN",
			ExpectedAddress: "1 MAIN ST\nHOUSTON TX 77002",
		}
	}
	return cases
}

func TestRunJob_ConcurrentPollingDuringRun(t *testing.T) {
	job := &runJob{
		ID:        "run-test",
		status:    "processing",
		Total:     8,
		CreatedAt: time.Now().Unix(),
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		// Polls race the run goroutine; snapshot must never see torn state.
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			s := job.snapshot()
			if s.Completed < 0 || s.Completed > s.Total {
				t.Errorf("snapshot completed = %d out of [0, %d]", s.Completed, s.Total)
				return
			}
			if s.Status == "completed" && s.Result == nil {
				t.Error("snapshot reports completed with no result")
				return
			}
		}
	}()

	executeRun(slowScraper{}, job, runCases(8), nil)
	close(done)
	wg.Wait()

	final := job.snapshot()
	if final.Status != "completed" {
		t.Errorf("final status = %q, want completed", final.Status)
	}
	if final.Completed != 8 {
		t.Errorf("final completed = %d, want 8", final.Completed)
	}
	if final.Result == nil || final.Result.Total != 8 || final.Result.Passed != 8 {
		t.Errorf("final result = %+v", final.Result)
	}
}

func TestRunJob_SnapshotWhileProcessing(t *testing.T) {
	job := &runJob{ID: "run-x", status: "processing", Total: 3}
	job.caseDone()
	job.caseDone()

	s := job.snapshot()
	if s.Status != "processing" || s.Completed != 2 || s.Result != nil {
		t.Errorf("snapshot = %+v", s)
	}

	job.finish(&models.BatchResult{Total: 3, Passed: 3})
	s = job.snapshot()
	if s.Status != "completed" || s.Result == nil {
		t.Errorf("snapshot after finish = %+v", s)
	}
}
