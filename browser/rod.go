package browser

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/models"
)

// RodDriver is the production Driver backed by a shared headless Chromium
// and a reusable page pool. It is safe for concurrent use.
type RodDriver struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	cfg         config.BrowserConfig
	activePages atomic.Int32
}

// NewRodDriver launches a headless browser and initialises the page pool.
func NewRodDriver(cfg config.BrowserConfig) (*RodDriver, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewBrowserLaunchFailed("failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewBrowserLaunchFailed("failed to connect to browser", err)
	}

	pool := rod.NewPagePool(cfg.MaxPages)
	slog.Info("page pool created", "maxPages", cfg.MaxPages)

	return &RodDriver{
		browser:  b,
		pagePool: pool,
		cfg:      cfg,
	}, nil
}

// Stats reports pool utilisation for the health endpoint.
func (d *RodDriver) Stats() (maxPages, activePages int) {
	return d.cfg.MaxPages, int(d.activePages.Load())
}

// OpenSession borrows a tab from the pool and prepares it for one attempt.
func (d *RodDriver) OpenSession(ctx context.Context, opts OpenOptions) (Session, error) {
	page, err := d.pagePool.Get(func() (*rod.Page, error) {
		return d.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewBrowserCrash("failed to acquire page from pool", err)
	}
	d.activePages.Add(1)

	// Stealth and resource blocking must be installed before the first
	// navigation; they only affect navigations that happen after them.
	if opts.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	if len(opts.Headers) > 0 {
		m := make(proto.NetworkHeaders, len(opts.Headers))
		for k, v := range opts.Headers {
			m[k] = gson.New(v)
		}
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: m}.Call(page)
	}

	router := setupHijack(page, d.cfg.BlockedResourceTypes)

	return &rodSession{page: page, router: router, driver: d}, nil
}

// Close drains the page pool and kills the browser process. Call on
// graceful shutdown to prevent zombie Chrome processes.
func (d *RodDriver) Close() {
	slog.Info("browser driver shutting down: draining page pool")
	d.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	d.browser.MustClose()
	slog.Info("browser driver shutdown complete")
}

// configToProto maps config strings to Rod protocol resource types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// setupHijack blocks the configured resource types on the page. Returns the
// running router so the session can stop it on release, or nil when nothing
// is blocked.
func setupHijack(page *rod.Page, blockedTypes []string) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := configToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if _, shouldBlock := blocked[h.Request.Type()]; shouldBlock {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks; it exits when router.Stop() is called.
	go router.Run()
	return router
}

// rodSession is one borrowed tab.
type rodSession struct {
	page   *rod.Page
	router *rod.HijackRouter
	driver *RodDriver
}

func (s *rodSession) Navigate(ctx context.Context, url string, wait WaitCondition, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	p := s.page.Context(tctx)

	if err := p.Navigate(url); err != nil {
		return err
	}

	switch wait.Kind {
	case WaitLoad:
		return p.WaitLoad()
	case WaitElement:
		return p.WaitElementsMoreThan(wait.Locator, 0)
	default:
		// WaitDOMStable not converging within the deadline surfaces as a
		// context error; a page that renders but keeps mutating is handled
		// by the element waits that follow.
		return p.WaitDOMStable(300*time.Millisecond, 0.1)
	}
}

func (s *rodSession) Locate(ctx context.Context, locator string) (Element, error) {
	p := s.page.Context(ctx)
	has, el, err := p.Has(locator)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return &rodElement{el: el}, nil
}

func (s *rodSession) WaitVisible(ctx context.Context, locator string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.page.Context(tctx).WaitElementsMoreThan(locator, 0)
}

func (s *rodSession) WaitStable(ctx context.Context, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.page.Context(tctx).WaitDOMStable(300*time.Millisecond, 0.1)
}

// Close returns the tab to the pool. It uses the original page reference
// (without any request context) so cleanup succeeds even after the attempt's
// context has expired.
func (s *rodSession) Close() error {
	if s.router != nil {
		_ = s.router.Stop()
	}
	if err := s.page.Navigate("about:blank"); err != nil {
		slog.Warn("session cleanup: failed to navigate to about:blank", "error", err)
	}
	s.driver.pagePool.Put(s.page)
	s.driver.activePages.Add(-1)
	return nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) HTML() (string, error) {
	return e.el.HTML()
}

func (e *rodElement) Input(text string) error {
	return e.el.Input(text)
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}
