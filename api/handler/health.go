package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/situsdata/ownertrace/engine"
	"github.com/situsdata/ownertrace/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when the recent per-jurisdiction counters show more
// failures than successes overall.
func Health(health *engine.HealthMemory, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot := health.Snapshot()

		var successes, failures int
		for _, h := range snapshot {
			successes += h.Successes
			failures += h.Failures
		}
		status := "healthy"
		if failures > 0 && failures > successes {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        status,
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			Version:       "0.1.0",
			Jurisdictions: snapshot,
		})
	}
}
