// Package search submits the product query and handles the awkward
// part of the flow: the site opens its results in a new tab. The
// navigator adopts that tab just long enough to learn the results URL,
// then hands it back to the primary window so every later stage can
// assume a single focused window.
package search

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/leadmart/behavior"
	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
	"github.com/use-agent/leadmart/session"
)

// Search page locators.
const (
	searchInputSelector  = "#search_string"
	firstTriggerSelector = ".rvmp_srch_button"
	advTriggerSelector   = ".adv-btn.search-button"
)

// Navigator drives one search from the primary window to a loaded
// results page.
type Navigator struct {
	Sess *session.Session
	Cfg  config.SearchConfig
}

// Run submits keyword and leaves the primary window showing the results
// page. Whatever happens, the deferred cleanup closes any leftover
// scratch window and restores focus to the primary handle, so callers
// and retries always start from the same window state.
func (n *Navigator) Run(ctx context.Context, keyword string) error {
	defer n.Sess.CloseScratchAndReturn()

	page := n.Sess.Primary().Context(ctx)

	slog.Info("initiating search", "keyword", keyword)
	if err := behavior.Sleep(ctx, n.Cfg.SettleDelay); err != nil {
		return err
	}

	input, err := page.Timeout(n.Cfg.InputTimeout).Element(searchInputSelector)
	if err != nil {
		n.Sess.Capture("search_timeout_error")
		return models.NewStageError(models.ErrCodeSearchFailed, "search input did not appear", err)
	}
	if err := input.SelectAllText(); err == nil {
		_ = input.Input("")
	}
	if err := input.Input(keyword); err != nil {
		return models.NewStageError(models.ErrCodeSearchFailed, "could not type keyword", err)
	}
	slog.Info("entered keyword into search input", "keyword", keyword)

	if err := n.click(page, firstTriggerSelector); err != nil {
		n.Sess.Capture("search_error")
		return models.NewStageError(models.ErrCodeSearchFailed, "primary search trigger failed", err)
	}
	if err := behavior.Sleep(ctx, n.Cfg.ClickDelay); err != nil {
		return err
	}
	if err := n.click(page, advTriggerSelector); err != nil {
		n.Sess.Capture("search_error")
		return models.NewStageError(models.ErrCodeSearchFailed, "advanced search trigger failed", err)
	}

	// The site opens results in a new tab; block until it exists.
	results, err := n.Sess.WaitForSecondPage(ctx, n.Cfg.WindowTimeout)
	if err != nil {
		n.Sess.Capture("search_timeout_error")
		return models.NewStageError(models.ErrCodeSearchFailed, "results window did not open", err)
	}
	if _, err := results.Activate(); err != nil {
		slog.Debug("could not focus results window", "error", err)
	}

	r := results.Context(ctx)
	if err := session.WaitURLContains(ctx, r, n.Cfg.ResultsURLMarker, n.Cfg.WindowTimeout); err != nil {
		n.Sess.Capture("search_timeout_error")
		return models.NewStageError(models.ErrCodeSearchFailed, "results URL never appeared in new window", err)
	}

	info, err := r.Info()
	if err != nil {
		return models.NewStageError(models.ErrCodeSearchFailed, "could not read results URL", err)
	}
	resultsURL := info.URL
	slog.Info("results window opened", "url", resultsURL)

	// Explicit hand-off: bring the results into the primary window so
	// the deferred cleanup can close the tab without losing them.
	if err := page.Navigate(resultsURL); err != nil {
		return models.NewStageError(models.ErrCodeSearchFailed, "could not load results in primary window", err)
	}
	if err := page.WaitLoad(); err != nil {
		slog.Debug("results page load wait ended early", "error", err)
	}

	slog.Info("search completed, primary window on results page")
	return nil
}

func (n *Navigator) click(page *rod.Page, selector string) error {
	el, err := page.Timeout(n.Cfg.ButtonTimeout).Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}
