// Package collector orchestrates repeated page scraping until a target
// lead count is reached or the results run out. It is deliberately
// browser-free: the page mechanics hide behind the Lister and Enricher
// interfaces so the loop's invariants can be tested with fakes.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/leadmart/behavior"
	"github.com/use-agent/leadmart/cleaner"
	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
	"github.com/use-agent/leadmart/relevancy"
	"github.com/use-agent/leadmart/retry"
)

// Lister exposes one results page at a time. Implementations report
// end-of-results via the models sentinels, which the collector treats
// as normal termination.
type Lister interface {
	// WaitForResults blocks until the results container is present;
	// models.ErrNoResults when it never appears.
	WaitForResults(ctx context.Context) error

	// Count enumerates the listing cards on the current page.
	Count(ctx context.Context) (int, error)

	// Extract reads card i into a best-effort lead record.
	Extract(ctx context.Context, i int) (models.Lead, error)

	// Next advances to the next page; models.ErrNoNextPage when no
	// control can be located.
	Next(ctx context.Context) error
}

// Enricher backfills missing contact fields from a candidate's detail
// page. It must never overwrite populated fields.
type Enricher interface {
	Enrich(ctx context.Context, lead *models.Lead) error
}

// Diagnoser captures failure artifacts (screenshots and DOM snapshots).
type Diagnoser interface {
	Capture(name string)
}

// nopDiagnoser keeps the loop free of nil checks in tests.
type nopDiagnoser struct{}

func (nopDiagnoser) Capture(string) {}

// Collector holds the state of one collection run.
type Collector struct {
	Lister   Lister
	Enricher Enricher  // optional
	Diag     Diagnoser // optional
	Cfg      config.CollectorConfig

	Keyword  string
	MinLeads int

	// EnrichAttempts/EnrichDelay parameterize the retry wrapper around
	// each enrichment call.
	EnrichAttempts int
	EnrichDelay    time.Duration
}

// Run walks pages in order, extracting cards strictly sequentially,
// until MinLeads are collected or the results end. Errors terminate the
// loop but never discard the leads gathered so far.
func (c *Collector) Run(ctx context.Context) []models.Lead {
	diag := c.Diag
	if diag == nil {
		diag = nopDiagnoser{}
	}

	var limiter *rate.Limiter
	if c.Cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.Cfg.RatePerSecond), 1)
	}

	leads := make([]models.Lead, 0, c.MinLeads)
	pageNum := 1

	for len(leads) < c.MinLeads {
		slog.Info("scraping page", "page", pageNum)

		if err := c.Lister.WaitForResults(ctx); err != nil {
			if errors.Is(err, models.ErrNoResults) {
				slog.Info("results container absent, treating as end of results", "page", pageNum)
				diag.Capture(fmt.Sprintf("page_%d_timeout", pageNum))
			} else {
				slog.Error("error waiting for results", "page", pageNum, "error", err)
				diag.Capture(fmt.Sprintf("page_%d_error", pageNum))
			}
			break
		}

		// Let dynamic content inside the container finish rendering.
		if err := behavior.SleepBetween(ctx, c.Cfg.SettleMin, c.Cfg.SettleMax); err != nil {
			break
		}

		count, err := c.Lister.Count(ctx)
		if err != nil {
			slog.Error("could not enumerate listing cards", "page", pageNum, "error", err)
			diag.Capture(fmt.Sprintf("page_%d_error", pageNum))
			break
		}
		if count == 0 {
			slog.Warn("no listing cards found", "page", pageNum)
			diag.Capture(fmt.Sprintf("search_results_page_%d_no_listings", pageNum))
			break
		}
		slog.Info("processing listings", "page", pageNum, "cards", count)

		aborted := false
		for i := 0; i < count && len(leads) < c.MinLeads; i++ {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					aborted = true
					break
				}
			}
			if err := behavior.SleepBetween(ctx, c.Cfg.ItemDelayMin, c.Cfg.ItemDelayMax); err != nil {
				aborted = true
				break
			}

			lead, err := c.Lister.Extract(ctx, i)
			if err != nil {
				slog.Error("card extraction failed", "page", pageNum, "card", i, "error", err)
				diag.Capture(fmt.Sprintf("page_%d_error", pageNum))
				aborted = true
				break
			}

			if c.Enricher != nil && (lead.PhoneNumber == "" || lead.Email == "") && lead.ProfileURL != "" {
				enrichErr := retry.Do(ctx, "profile_enrichment", c.EnrichAttempts, c.EnrichDelay,
					func(ctx context.Context) error {
						return c.Enricher.Enrich(ctx, &lead)
					})
				if enrichErr != nil {
					slog.Warn("profile enrichment gave up", "card", i, "error", enrichErr)
				}
			}

			lead.RelevancyScore = relevancy.Score(&lead, c.Keyword)
			cleaner.Lead(&lead)

			if !lead.Admissible() {
				slog.Debug("dropping record without company name or description", "card", i)
				continue
			}
			leads = append(leads, lead)
			slog.Info("collected lead",
				"count", len(leads),
				"company", lead.CompanyName,
				"score", lead.RelevancyScore,
			)
		}
		if aborted || len(leads) >= c.MinLeads {
			break
		}

		if err := c.Lister.Next(ctx); err != nil {
			if errors.Is(err, models.ErrNoNextPage) {
				slog.Info("no more pages available", "page", pageNum)
			} else {
				slog.Error("pagination failed", "page", pageNum, "error", err)
				diag.Capture(fmt.Sprintf("page_%d_error", pageNum))
			}
			break
		}
		pageNum++
		if err := behavior.SleepBetween(ctx, c.Cfg.PageDelayMin, c.Cfg.PageDelayMax); err != nil {
			break
		}
	}

	slog.Info("collection finished", "total", len(leads), "pages", pageNum)
	return leads
}
