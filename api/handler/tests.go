package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/validate"
	"github.com/situsdata/ownertrace/webhook"
)

// runStore holds all in-flight and completed regression runs.
var runStore sync.Map

func init() {
	// Expire finished runs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			runStore.Range(func(key, value any) bool {
				job := value.(*runJob)
				if job.CreatedAt < cutoff {
					runStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// runJob is one regression run. The run goroutine writes the mutable fields
// while poll requests read them, so access goes through the mutex.
type runJob struct {
	ID        string
	Total     int
	CreatedAt int64

	mu        sync.Mutex
	status    string
	completed int
	result    *models.BatchResult
}

func (j *runJob) caseDone() {
	j.mu.Lock()
	j.completed++
	j.mu.Unlock()
}

func (j *runJob) finish(result *models.BatchResult) {
	j.mu.Lock()
	j.result = result
	j.status = "completed"
	j.mu.Unlock()
}

func (j *runJob) snapshot() models.BatchRunStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	return models.BatchRunStatusResponse{
		ID:        j.ID,
		Status:    j.status,
		Completed: j.completed,
		Total:     j.Total,
		Result:    j.result,
	}
}

// runRequest selects which saved cases to replay. Empty means all.
type runRequest struct {
	CaseIDs []string `json:"case_ids"`
}

// ListCases returns a handler for GET /api/v1/tests/cases.
func ListCases(store *validate.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cases, err := store.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cases": cases})
	}
}

// PutCase returns a handler for POST /api/v1/tests/cases. A case without an
// id gets one assigned.
func PutCase(store *validate.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tc models.TestCase
		if err := c.ShouldBindJSON(&tc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if tc.JurisdictionID == "" || tc.IdentifierValue == "" || !tc.IdentifierKind.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "jurisdiction_id, identifier_kind, and identifier_value are required",
			})
			return
		}
		if tc.ID == "" {
			tc.ID = uuid.NewString()
		}
		if err := store.Put(tc); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, tc)
	}
}

// DeleteCase returns a handler for DELETE /api/v1/tests/cases/:id.
func DeleteCase(store *validate.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		existed, err := store.Delete(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !existed {
			c.JSON(http.StatusNotFound, gin.H{"error": "test case not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RunBatch returns a handler for POST /api/v1/tests/run. The run executes in
// the background — cases replay one at a time against live sites, which can
// take minutes — and is polled via GetRun.
func RunBatch(scraper validate.Scraper, store *validate.Store, notifier *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req runRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cases, err := selectCases(store, req.CaseIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(cases) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no test cases to run"})
			return
		}

		job := &runJob{
			ID:        "run-" + uuid.NewString(),
			status:    "processing",
			Total:     len(cases),
			CreatedAt: time.Now().Unix(),
		}
		runStore.Store(job.ID, job)

		go executeRun(scraper, job, cases, notifier)

		c.JSON(http.StatusAccepted, models.BatchRunResponse{
			ID:     job.ID,
			Status: "processing",
			Total:  job.Total,
		})
	}
}

// GetRun returns a handler for GET /api/v1/tests/run/:id.
func GetRun() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := runStore.Load(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusOK, val.(*runJob).snapshot())
	}
}

func selectCases(store *validate.Store, ids []string) ([]models.TestCase, error) {
	all, err := store.List()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return all, nil
	}

	byID := make(map[string]models.TestCase, len(all))
	for _, tc := range all {
		byID[tc.ID] = tc
	}
	selected := make([]models.TestCase, 0, len(ids))
	for _, id := range ids {
		if tc, ok := byID[id]; ok {
			selected = append(selected, tc)
		}
	}
	return selected, nil
}

// executeRun drives the sequential runner and notifies the webhook, if
// configured, when the run completes.
func executeRun(scraper validate.Scraper, job *runJob, cases []models.TestCase, notifier *webhook.Notifier) {
	runner := validate.NewRunner(scraper)
	runner.OnResult = func(models.TestResult) {
		job.caseDone()
	}

	result := runner.Run(context.Background(), cases)
	job.finish(result)

	if notifier != nil {
		notifier.BatchCompletedAsync(job.ID, result)
	}
}
