package extract

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/use-agent/leadmart/behavior"
	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
)

// ProfileEnricher backfills contact fields from a lead's company
// profile page. It tries a fingerprinted HTTP fetch first and falls
// back to a scratch browser window for pages that need rendering.
type ProfileEnricher struct {
	Sess browserSession
	Cfg  config.ProfileConfig
}

// browserSession is the narrow slice of the browser session the
// enricher needs. Declared here so tests can stub the scratch path.
type browserSession interface {
	UserAgent() string
	WithScratch(ctx context.Context, url string, fn func(p *rod.Page) error) error
}

// NewProfileEnricher wires the enricher to a live browser session.
func NewProfileEnricher(sess browserSession, cfg config.ProfileConfig) *ProfileEnricher {
	return &ProfileEnricher{Sess: sess, Cfg: cfg}
}

// Enrich visits the lead's profile page and fills in whichever of
// phone, email and address are still missing. Fields already populated
// are left alone. A lead with no profile URL, or with both contact
// channels already present, is returned untouched.
func (e *ProfileEnricher) Enrich(ctx context.Context, lead *models.Lead) error {
	if lead.ProfileURL == "" {
		return nil
	}
	if lead.PhoneNumber != "" && lead.Email != "" {
		return nil
	}

	if e.Cfg.HTTPFirst && e.enrichViaHTTP(ctx, lead) {
		return nil
	}
	return e.enrichViaBrowser(ctx, lead)
}

// enrichViaHTTP fetches the profile over plain HTTP and scans it.
// Returns true when the scan is conclusive, meaning the page rendered
// server-side and a browser visit would see the same content.
func (e *ProfileEnricher) enrichViaHTTP(ctx context.Context, lead *models.Lead) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, e.Cfg.HTTPTimeout)
	defer cancel()

	body, err := newProfileFetcher(e.Sess.UserAgent()).fetch(fetchCtx, lead.ProfileURL)
	if err != nil {
		slog.Debug("HTTP profile fetch failed, falling back to browser",
			"url", lead.ProfileURL, "error", err)
		return false
	}
	if needsRendering(body) {
		slog.Debug("profile page needs rendering, falling back to browser",
			"url", lead.ProfileURL)
		return false
	}

	scanProfileHTML(string(body), lead.ProfileURL, lead, e.Cfg.MinAddressLen)
	slog.Debug("profile enriched via HTTP",
		"company", lead.CompanyName,
		"phone_found", lead.PhoneNumber != "",
		"email_found", lead.Email != "")
	return true
}

// enrichViaBrowser opens the profile in a scratch window, waits for it
// to settle and scans the rendered DOM.
func (e *ProfileEnricher) enrichViaBrowser(ctx context.Context, lead *models.Lead) error {
	return e.Sess.WithScratch(ctx, lead.ProfileURL, func(p *rod.Page) error {
		if err := p.Timeout(e.Cfg.ReadyTimeout).WaitLoad(); err != nil {
			return models.NewStageError(models.ErrCodeNavigation,
				"profile page did not load", err)
		}
		if err := behavior.SleepBetween(ctx, e.Cfg.SettleMin, e.Cfg.SettleMax); err != nil {
			return err
		}

		html, err := p.HTML()
		if err != nil {
			return models.NewStageError(models.ErrCodeExtraction,
				"profile DOM read failed", err)
		}
		scanProfileHTML(html, lead.ProfileURL, lead, e.Cfg.MinAddressLen)

		slog.Debug("profile enriched via browser",
			"company", lead.CompanyName,
			"phone_found", lead.PhoneNumber != "",
			"email_found", lead.Email != "")
		return nil
	})
}
