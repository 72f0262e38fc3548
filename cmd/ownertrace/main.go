package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/situsdata/ownertrace/api"
	"github.com/situsdata/ownertrace/browser"
	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/engine"
	"github.com/situsdata/ownertrace/identifier"
	"github.com/situsdata/ownertrace/strategy"
	"github.com/situsdata/ownertrace/strategy/sites"
	"github.com/situsdata/ownertrace/validate"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("ownertrace starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Load jurisdiction profiles ───────────────────────────────
	profiles := config.NewProfileSet()
	if err := profiles.LoadFile(cfg.Scraper.ProfilesPath); err != nil {
		slog.Error("failed to load jurisdiction profiles",
			"path", cfg.Scraper.ProfilesPath,
			"error", err,
		)
		os.Exit(1)
	}
	slog.Info("jurisdiction profiles loaded",
		"path", cfg.Scraper.ProfilesPath,
		"count", len(profiles.List()),
	)

	// ── 4. Register site strategies and identifier rules ────────────
	rules := identifier.NewRuleset()
	registry := strategy.NewRegistry(profiles)
	sites.Register(registry, rules)

	// ── 5. Launch the browser ───────────────────────────────────────
	driver, err := browser.NewRodDriver(cfg.Browser)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}
	defer driver.Close()

	// ── 6. Wire the scrape engine ───────────────────────────────────
	health := engine.NewHealthMemory(24 * time.Hour)
	defer health.Stop()
	eng := engine.New(driver, registry, profiles, rules, cfg.Scraper, health)

	// ── 7. Setup router ─────────────────────────────────────────────
	store := validate.NewStore(cfg.Store.CasesPath)
	startTime := time.Now()
	router := api.NewRouter(eng, profiles, health, store, cfg, startTime)

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// driver.Close() runs via defer — drains page pool and kills Chrome.
	slog.Info("ownertrace stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
