package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/leadmart/models"
)

// parseCard reads the text fields of one listing card from its HTML
// snapshot. Each field is attempted independently; absence is logged at
// debug and leaves the field at its default. Phone extraction is not
// handled here because it may require clicking the reveal control on
// the live DOM.
func parseCard(cardHTML string) models.Lead {
	lead := models.NewLead()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cardHTML))
	if err != nil {
		slog.Debug("card HTML did not parse", "error", err)
		return lead
	}

	if title := doc.Find(titleLinkSelector).First(); title.Length() > 0 {
		lead.Description = strings.TrimSpace(title.Text())
		if href, ok := title.Attr("href"); ok {
			lead.ProfileURL = href
		}
	} else {
		slog.Debug("product title or its link not found")
	}

	if price := doc.Find(priceSelector).First(); price.Length() > 0 {
		if text := strings.TrimSpace(price.Text()); text != "" {
			lead.Price = text
		}
	} else {
		slog.Debug("price not found")
	}

	if company := doc.Find(companyLinkSelector).First(); company.Length() > 0 {
		lead.CompanyName = strings.TrimSpace(company.Text())
		if lead.ProfileURL == "" {
			if href, ok := company.Attr("href"); ok {
				lead.ProfileURL = href
			}
		}
	} else {
		slog.Debug("company name or its link not found")
	}

	if loc := doc.Find(shortLocSelector).First(); loc.Length() > 0 {
		lead.Address = strings.TrimSpace(loc.Text())
	} else {
		slog.Debug("short location not found")
	}

	// A detailed address block wins over the short marker, but only
	// when it actually has content.
	if full := doc.Find(fullAddressSelector).First(); full.Length() > 0 {
		if text := strings.TrimSpace(full.Text()); text != "" {
			lead.Address = text
		}
	} else {
		slog.Debug("full address block not found")
	}

	return lead
}
