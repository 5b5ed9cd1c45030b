// Package extract pulls structured lead records out of the remote UI:
// per-card listing extraction on the results page and a detail-page
// fallback for missing contact fields.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/use-agent/leadmart/cleaner"
	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
	"github.com/use-agent/leadmart/session"
)

// ListingScraper implements collector.Lister against the session's
// primary page.
type ListingScraper struct {
	Sess *session.Session
	Cfg  config.ExtractConfig

	cards []*rod.Element
}

// WaitForResults blocks until the results container is present, mapping
// its absence to the end-of-results sentinel.
func (s *ListingScraper) WaitForResults(ctx context.Context) error {
	page := s.Sess.Primary().Context(ctx)
	if _, err := page.Timeout(s.Cfg.ResultsTimeout).Element(resultsContainerSelector); err != nil {
		return models.ErrNoResults
	}
	slog.Debug("results container present")
	return nil
}

// Count enumerates the listing cards on the current page and caches
// their handles for Extract. Called once per page, after WaitForResults.
func (s *ListingScraper) Count(ctx context.Context) (int, error) {
	page := s.Sess.Primary().Context(ctx)
	els, err := page.Elements(cardSelector)
	if err != nil {
		return 0, models.NewStageError(models.ErrCodeExtraction, "could not enumerate listing cards", err)
	}
	s.cards = els
	return len(s.cards), nil
}

// Extract reads card i into a best-effort lead record: text fields from
// the card's HTML snapshot, phone from the live DOM (it may hide behind
// a reveal control). Individual field absence never fails the card.
func (s *ListingScraper) Extract(ctx context.Context, i int) (models.Lead, error) {
	if i < 0 || i >= len(s.cards) {
		return models.Lead{}, models.NewStageError(models.ErrCodeExtraction,
			fmt.Sprintf("card index %d out of range (%d cards)", i, len(s.cards)), nil)
	}
	card := s.cards[i].Context(ctx)

	html, err := card.HTML()
	if err != nil {
		// The handle went stale; this is a page-level problem, not a
		// missing field.
		return models.Lead{}, models.NewStageError(models.ErrCodeExtraction, "card handle unreadable", err)
	}

	lead := parseCard(html)
	s.extractPhone(card, &lead)
	return lead, nil
}

// extractPhone applies the two-path phone policy: use the directly
// visible contact element if rendered, otherwise click the "view
// mobile number" control and wait for the revealed element.
func (s *ListingScraper) extractPhone(card *rod.Element, lead *models.Lead) {
	if ok, el, err := card.Has(directPhoneSelector); err == nil && ok {
		if visible, _ := el.Visible(); visible {
			if text, err := el.Text(); err == nil && strings.TrimSpace(text) != "" {
				lead.PhoneNumber = cleaner.Phone(strings.TrimSpace(text))
				slog.Debug("direct phone number found", "phone", lead.PhoneNumber)
				return
			}
		}
	}

	ok, btn, err := card.Has(revealButtonSelector)
	if err != nil || !ok {
		slog.Debug("no reveal control on card")
		return
	}
	if visible, _ := btn.Visible(); !visible {
		slog.Debug("reveal control not rendered")
		return
	}
	if !controlEnabled(btn.Property("disabled")) {
		slog.Debug("reveal control disabled")
		return
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		slog.Debug("reveal control click failed", "error", err)
		return
	}

	revealed, err := card.Timeout(s.Cfg.RevealTimeout).Element(directPhoneSelector)
	if err != nil {
		slog.Debug("revealed phone did not appear", "error", err)
		return
	}
	if err := revealed.Timeout(s.Cfg.RevealTimeout).WaitVisible(); err != nil {
		slog.Debug("revealed phone never became visible", "error", err)
		return
	}
	if text, err := revealed.Text(); err == nil && strings.TrimSpace(text) != "" {
		lead.PhoneNumber = cleaner.Phone(strings.TrimSpace(text))
		slog.Debug("revealed phone number extracted", "phone", lead.PhoneNumber)
	}
}

// Next locates and clicks a next-page control: the configured selector
// chain first, then anchors or spans whose text is exactly "Next".
// models.ErrNoNextPage when nothing matches within the bound.
func (s *ListingScraper) Next(ctx context.Context) error {
	page := s.Sess.Primary().Context(ctx)
	deadline := time.Now().Add(s.Cfg.NextTimeout)

	for {
		for _, sel := range s.Cfg.NextSelectors {
			ok, el, err := page.Has(sel)
			if err != nil || !ok {
				continue
			}
			if visible, _ := el.Visible(); !visible {
				continue
			}
			return s.clickNext(el, sel)
		}

		if ok, el, err := page.HasR("a, span", `^\s*Next\s*$`); err == nil && ok {
			if visible, _ := el.Visible(); visible {
				return s.clickNext(el, "text=Next")
			}
		}

		if time.Now().After(deadline) {
			return models.ErrNoNextPage
		}
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// controlEnabled interprets an element's disabled property: only an
// affirmative disabled flag blocks the click, a property read error
// does not (the click itself will fail and be logged).
func controlEnabled(prop gson.JSON, err error) bool {
	if err != nil {
		return true
	}
	disabled, ok := prop.Val().(bool)
	return !ok || !disabled
}

func (s *ListingScraper) clickNext(el *rod.Element, how string) error {
	if err := el.ScrollIntoView(); err != nil {
		slog.Debug("could not scroll next control into view", "error", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return models.NewStageError(models.ErrCodeNavigation, "next page click failed", err)
	}
	slog.Info("advanced to next page", "via", how)
	s.cards = nil
	return nil
}
