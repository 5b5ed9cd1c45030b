// Package session owns the browser lifecycle: one primary window for
// the whole run, at most one transient scratch window, and the
// guarantee that control always returns to the primary window before
// the next pipeline stage begins.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
)

// Session wraps the rod browser plus the remembered primary page. All
// browser interaction in the pipeline goes through it.
type Session struct {
	browser *rod.Browser
	primary *rod.Page
	cfg     config.BrowserConfig
	ua      string

	closeOnce sync.Once
}

// Launch starts a browser with a randomized client identity and a
// randomized remote debugging port, then opens the primary page.
// A launch failure is fatal for the process; the returned StageError
// carries ErrCodeBrowserCrash so main can print remediation guidance.
func Launch(cfg config.BrowserConfig) (*Session, error) {
	slog.Info("setting up the browser", "headless", cfg.Headless)

	port := cfg.DebugPortMin
	if cfg.DebugPortMax > cfg.DebugPortMin {
		port += rand.Intn(cfg.DebugPortMax - cfg.DebugPortMin)
	}
	slog.Info("using remote debugging port", "port", port)

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	l.Set(flags.RemoteDebuggingPort, strconv.Itoa(port))
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-notifications"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("no-first-run"))
	if cfg.Headless {
		l.Set(flags.Flag("window-size"), "1920,1080")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewStageError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewStageError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	primary, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, models.NewStageError(models.ErrCodeBrowserCrash, "failed to open primary page", err)
	}

	s := &Session{
		browser: browser,
		primary: primary,
		cfg:     cfg,
		ua:      randomUserAgent(),
	}
	s.applyIdentity(primary)
	slog.Info("browser setup complete", "userAgent", s.ua)
	return s, nil
}

// Primary returns the primary page handle.
func (s *Session) Primary() *rod.Page {
	return s.primary
}

// applyIdentity installs the stealth script, the randomized user agent
// and a plausible Accept-Language on a page. Must run before the page
// navigates anywhere that matters.
func (s *Session) applyIdentity(page *rod.Page) {
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}
	if err := (proto.NetworkSetUserAgentOverride{UserAgent: s.ua}).Call(page); err != nil {
		slog.Warn("user agent override failed", "error", err)
	}
	headers := proto.NetworkHeaders{
		"Accept-Language": gson.New("en-US,en;q=0.9"),
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: headers}).Call(page); err != nil {
		slog.Debug("extra header injection failed", "error", err)
	}
}

// UserAgent returns the client identity string chosen at launch, so
// non-browser fetch paths can present the same identity.
func (s *Session) UserAgent() string {
	return s.ua
}

// WaitForSecondPage blocks until a second window exists, then returns
// its handle without closing anything. The caller still owns the
// close-and-refocus obligation, normally via CloseScratchAndReturn.
func (s *Session) WaitForSecondPage(ctx context.Context, timeout time.Duration) (*rod.Page, error) {
	deadline := time.Now().Add(timeout)
	for {
		pages, err := s.browser.Pages()
		if err == nil {
			for _, p := range pages {
				if p.TargetID != s.primary.TargetID {
					return p, nil
				}
			}
		}
		if time.Now().After(deadline) {
			return nil, models.NewStageError(models.ErrCodeNavigation, "second window did not appear", err)
		}
		select {
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// WaitURLContains polls the page URL until it contains marker, giving
// up after timeout.
func WaitURLContains(ctx context.Context, page *rod.Page, marker string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if info, err := page.Info(); err == nil && strings.Contains(info.URL, marker) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("URL did not contain %q within %s", marker, timeout)
		}
		select {
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// CloseScratchAndReturn closes every non-primary window and refocuses
// the primary one. Idempotent and safe to defer around any stage that
// may open a scratch window.
func (s *Session) CloseScratchAndReturn() {
	pages, err := s.browser.Pages()
	if err != nil {
		slog.Warn("could not enumerate windows during cleanup", "error", err)
		return
	}
	for _, p := range pages {
		if p.TargetID == s.primary.TargetID {
			continue
		}
		if err := p.Close(); err != nil {
			slog.Warn("failed to close scratch window", "error", err)
		}
	}
	if _, err := s.primary.Activate(); err != nil {
		slog.Warn("failed to refocus primary window", "error", err)
	}
}

// WithScratch opens url in a scratch window, runs fn against it, and
// guarantees the window is closed and focus restored to the primary
// page on every exit path, including panics inside fn.
func (s *Session) WithScratch(ctx context.Context, url string, fn func(p *rod.Page) error) (err error) {
	page, pageErr := s.browser.Page(proto.TargetCreateTarget{})
	if pageErr != nil {
		return models.NewStageError(models.ErrCodeNavigation, "failed to open scratch window", pageErr)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scratch window body panicked: %v", r)
		}
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("failed to close scratch window", "error", closeErr)
		}
		if _, actErr := s.primary.Activate(); actErr != nil {
			slog.Warn("failed to refocus primary window", "error", actErr)
		}
		slog.Debug("closed scratch window and returned to primary")
	}()

	s.applyIdentity(page)

	p := page.Context(ctx)
	if navErr := p.Navigate(url); navErr != nil {
		return models.NewStageError(models.ErrCodeNavigation, "scratch window navigation failed", navErr)
	}

	return fn(p)
}

// Shutdown terminates the browser session. Safe to call multiple times.
func (s *Session) Shutdown() {
	s.closeOnce.Do(func() {
		if err := s.browser.Close(); err != nil {
			slog.Warn("browser close reported an error", "error", err)
		} else {
			slog.Info("browser closed")
		}
	})
}
