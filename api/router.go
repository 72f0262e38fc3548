package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/situsdata/ownertrace/api/handler"
	"github.com/situsdata/ownertrace/api/middleware"
	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/engine"
	"github.com/situsdata/ownertrace/validate"
	"github.com/situsdata/ownertrace/webhook"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(eng *engine.Engine, profiles *config.ProfileSet, health *engine.HealthMemory, store *validate.Store, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(health, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Scrape
	protected.POST("/scrape", handler.Scrape(eng))

	// Jurisdictions
	protected.GET("/jurisdictions", handler.Jurisdictions(profiles))

	// Regression cases
	protected.GET("/tests/cases", handler.ListCases(store))
	protected.POST("/tests/cases", handler.PutCase(store))
	protected.DELETE("/tests/cases/:id", handler.DeleteCase(store))

	// Regression runs
	notifier := webhook.NewNotifier(cfg.Webhook, slog.Default())
	protected.POST("/tests/run", handler.RunBatch(eng, store, notifier))
	protected.GET("/tests/run/:id", handler.GetRun())

	return r
}
