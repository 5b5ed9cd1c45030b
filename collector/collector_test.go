package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
)

// fakeLister serves a fixed sequence of pages of pre-built leads.
type fakeLister struct {
	pages   [][]models.Lead
	pageIdx int

	waitCalls int
	nextCalls int
}

func (f *fakeLister) WaitForResults(context.Context) error {
	f.waitCalls++
	if f.pageIdx >= len(f.pages) {
		return models.ErrNoResults
	}
	return nil
}

func (f *fakeLister) Count(context.Context) (int, error) {
	return len(f.pages[f.pageIdx]), nil
}

func (f *fakeLister) Extract(_ context.Context, i int) (models.Lead, error) {
	return f.pages[f.pageIdx][i], nil
}

func (f *fakeLister) Next(context.Context) error {
	f.nextCalls++
	if f.pageIdx+1 >= len(f.pages) {
		return models.ErrNoNextPage
	}
	f.pageIdx++
	return nil
}

// fakeEnricher records which leads it saw and optionally fills fields.
type fakeEnricher struct {
	calls int
	phone string
	email string
}

func (f *fakeEnricher) Enrich(_ context.Context, l *models.Lead) error {
	f.calls++
	if l.PhoneNumber == "" && f.phone != "" {
		l.PhoneNumber = f.phone
	}
	if l.Email == "" && f.email != "" {
		l.Email = f.email
	}
	return nil
}

func quietCfg() config.CollectorConfig {
	return config.CollectorConfig{} // zero delays, no rate limit
}

func card(company, desc string) models.Lead {
	return models.Lead{CompanyName: company, Description: desc, ProfileURL: "https://example.com/p"}
}

func TestRun_TwoCardsThenEmptyPage(t *testing.T) {
	lister := &fakeLister{pages: [][]models.Lead{
		{
			{CompanyName: "Acme Sports", Description: "Cricket Ball", PhoneNumber: "9876543210", Email: "a@b.in", Address: "Meerut"},
			{CompanyName: "Ball Corp", Description: "Leather Cricket Ball", PhoneNumber: "9876543211", Email: "c@d.in", Address: "Jalandhar"},
		},
		{}, // next page has no cards
	}}
	c := &Collector{
		Lister:   lister,
		Cfg:      quietCfg(),
		Keyword:  "Cricket Ball",
		MinLeads: 2,
	}
	leads := c.Run(context.Background())
	if len(leads) != 2 {
		t.Fatalf("got %d leads, want 2", len(leads))
	}
	// Target met on page one, so the loop must stop without paginating.
	if lister.nextCalls != 0 {
		t.Errorf("next clicked %d times, want 0 (target reached)", lister.nextCalls)
	}
	for _, l := range leads {
		if l.RelevancyScore <= 0 || l.RelevancyScore > 100 {
			t.Errorf("lead %q score %d out of range", l.CompanyName, l.RelevancyScore)
		}
	}
}

func TestRun_SecondPageEmptyStopsLoop(t *testing.T) {
	lister := &fakeLister{pages: [][]models.Lead{
		{card("Acme", "Cricket Ball")},
		{}, // empty second page terminates
	}}
	c := &Collector{Lister: lister, Cfg: quietCfg(), Keyword: "Cricket Ball", MinLeads: 10}
	leads := c.Run(context.Background())
	if len(leads) != 1 {
		t.Fatalf("got %d leads, want 1", len(leads))
	}
	if lister.nextCalls != 1 {
		t.Errorf("next clicked %d times, want 1", lister.nextCalls)
	}
}

func TestRun_ZeroCardsFirstPage(t *testing.T) {
	lister := &fakeLister{pages: [][]models.Lead{{}}}
	c := &Collector{Lister: lister, Cfg: quietCfg(), Keyword: "Cricket Ball", MinLeads: 5}
	leads := c.Run(context.Background())
	if len(leads) != 0 {
		t.Fatalf("got %d leads, want 0", len(leads))
	}
}

func TestRun_TerminatesWhenPagesRunOut(t *testing.T) {
	var pages [][]models.Lead
	for p := 0; p < 3; p++ {
		var cards []models.Lead
		for i := 0; i < 10; i++ {
			cards = append(cards, card("Company", "Cricket Ball"))
		}
		pages = append(pages, cards)
	}
	lister := &fakeLister{pages: pages}
	c := &Collector{Lister: lister, Cfg: quietCfg(), Keyword: "Cricket Ball", MinLeads: 1000}
	leads := c.Run(context.Background())
	if len(leads) != 30 {
		t.Fatalf("got %d leads, want exactly 30 despite target unmet", len(leads))
	}
}

func TestRun_AdmissionInvariant(t *testing.T) {
	lister := &fakeLister{pages: [][]models.Lead{{
		{CompanyName: "", Description: ""},                   // inadmissible
		{CompanyName: "  \n ", Description: "\t"},            // inadmissible after sanitization
		{CompanyName: "Named Co", Description: ""},           // admissible
		{CompanyName: "", Description: "Cricket Ball stock"}, // admissible
	}}}
	c := &Collector{Lister: lister, Cfg: quietCfg(), Keyword: "Cricket Ball", MinLeads: 10}
	leads := c.Run(context.Background())
	if len(leads) != 2 {
		t.Fatalf("got %d leads, want 2", len(leads))
	}
	for _, l := range leads {
		if l.CompanyName == "" && l.Description == "" {
			t.Errorf("inadmissible record slipped through: %+v", l)
		}
	}
}

func TestRun_EnrichesOnlyWhenContactMissing(t *testing.T) {
	complete := models.Lead{
		CompanyName: "Done Co", Description: "Cricket Ball",
		PhoneNumber: "9876543210", Email: "x@y.in", ProfileURL: "https://example.com/done",
	}
	missing := card("Needs Work", "Cricket Ball")
	noURL := models.Lead{CompanyName: "No Link", Description: "Cricket Ball"}

	enricher := &fakeEnricher{phone: "9999999999", email: "found@profile.in"}
	lister := &fakeLister{pages: [][]models.Lead{{complete, missing, noURL}}}
	c := &Collector{
		Lister: lister, Enricher: enricher, Cfg: quietCfg(),
		Keyword: "Cricket Ball", MinLeads: 10, EnrichAttempts: 2,
	}
	leads := c.Run(context.Background())
	if enricher.calls != 1 {
		t.Errorf("enricher called %d times, want 1 (only the lead missing contact with a URL)", enricher.calls)
	}
	if len(leads) != 3 {
		t.Fatalf("got %d leads, want 3", len(leads))
	}
	if leads[1].PhoneNumber != "9999999999" || leads[1].Email != "found@profile.in" {
		t.Errorf("enrichment did not fill missing contact: %+v", leads[1])
	}
	if leads[0].PhoneNumber != "9876543210" {
		t.Errorf("pre-populated phone changed: %q", leads[0].PhoneNumber)
	}
}

func TestRun_SanitizesBeforeAppending(t *testing.T) {
	lister := &fakeLister{pages: [][]models.Lead{{
		{CompanyName: "Acme\n Sports", Description: "Leather\t\tCricket Ball"},
	}}}
	c := &Collector{Lister: lister, Cfg: quietCfg(), Keyword: "Cricket Ball", MinLeads: 1}
	leads := c.Run(context.Background())
	if len(leads) != 1 {
		t.Fatalf("got %d leads, want 1", len(leads))
	}
	if leads[0].CompanyName != "Acme Sports" {
		t.Errorf("company not sanitized: %q", leads[0].CompanyName)
	}
	if leads[0].Description != "Leather Cricket Ball" {
		t.Errorf("description not sanitized: %q", leads[0].Description)
	}
}

func TestRun_ExtractionErrorKeepsPartialResults(t *testing.T) {
	lister := &failingLister{failAt: 2, pages: [][]models.Lead{{
		card("One", "Cricket Ball"),
		card("Two", "Cricket Ball"),
		card("Three", "Cricket Ball"),
	}}}
	c := &Collector{Lister: lister, Cfg: quietCfg(), Keyword: "Cricket Ball", MinLeads: 10}
	leads := c.Run(context.Background())
	if len(leads) != 2 {
		t.Fatalf("got %d leads, want the 2 collected before the failure", len(leads))
	}
}

// failingLister wraps fakeLister semantics but fails extraction at a
// fixed card index.
type failingLister struct {
	pages  [][]models.Lead
	failAt int
}

func (f *failingLister) WaitForResults(context.Context) error { return nil }

func (f *failingLister) Count(context.Context) (int, error) { return len(f.pages[0]), nil }

func (f *failingLister) Extract(_ context.Context, i int) (models.Lead, error) {
	if i == f.failAt {
		return models.Lead{}, errors.New("stale element reference")
	}
	return f.pages[0][i], nil
}

func (f *failingLister) Next(context.Context) error { return models.ErrNoNextPage }
