package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/situsdata/ownertrace/engine"
	"github.com/situsdata/ownertrace/models"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Flow:
//  1. Parse & validate the request body.
//  2. Engine.Scrape — resolution failures (unknown/disabled jurisdiction)
//     come back as an error before any outcome exists and map to 404.
//  3. Map the outcome: success → 200, classified failure → status by kind,
//     always returning the full error detail and attempt metadata.
func Scrape(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Kind:    "INVALID_INPUT",
					Message: err.Error(),
				},
			})
			return
		}

		outcome, err := eng.Scrape(c.Request.Context(), &req)
		if err != nil {
			respondResolutionError(c, err)
			return
		}

		if !outcome.Success() {
			c.JSON(mapKindToStatus(outcome.Err.Kind), models.ScrapeResponse{
				Success:  false,
				Metadata: &outcome.Metadata,
				Error:    outcome.Err.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:  true,
			Record:   outcome.Record,
			Metadata: &outcome.Metadata,
		})
	}
}

// respondResolutionError handles errors raised before an outcome existed:
// unknown/disabled jurisdictions map to 404, anything else is a
// configuration defect.
func respondResolutionError(c *gin.Context, err error) {
	var ce *models.ClassifiedError
	if errors.As(err, &ce) {
		c.JSON(mapKindToStatus(ce.Kind), models.ScrapeResponse{
			Success: false,
			Error:   ce.ToDetail(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ScrapeResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Kind:    string(models.ErrUnknown),
			Message: err.Error(),
		},
	})
}

// mapKindToStatus translates classified kinds to HTTP status codes.
func mapKindToStatus(kind models.ErrorKind) int {
	switch kind {
	case models.ErrCountyNotFound, models.ErrCountyDisabled:
		return http.StatusNotFound // 404
	case models.ErrInvalidIdentifierType, models.ErrValidation, models.ErrInvalidDataFormat:
		return http.StatusBadRequest // 400
	case models.ErrTimeout, models.ErrPageLoadTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusBadGateway // 502
	}
}
