package extract

import (
	"regexp"

	"github.com/andybalholm/cascadia"
)

// Listing-card locators on the results page.
const (
	resultsContainerSelector = ".listingCardContainer"
	cardSelector             = ".listingCardContainer .card"

	titleLinkSelector    = ".producttitle .cardlinks"
	priceSelector        = "p.price"
	companyLinkSelector  = ".companyname .cardlinks"
	shortLocSelector     = ".newLocationUi .highlight"
	fullAddressSelector  = "#citytt1 p"
	directPhoneSelector  = ".contactnumber .pns_h"
	revealButtonSelector = ".mo.viewn.vmn"
)

// Profile pages vary a lot, so contact scanning runs ordered chains of
// precompiled heuristics, first match wins. The chains are separate
// from the core logic so site-layout drift means editing a table, not
// the extractor.
var (
	phoneClassChain = []cascadia.Selector{
		cascadia.MustCompile(`[class*="phone"]`),
		cascadia.MustCompile(`[class*="mobile"]`),
		cascadia.MustCompile(`[class*="contact-num"]`),
	}

	mailtoChain = []cascadia.Selector{
		cascadia.MustCompile(`a[href^="mailto:"]`),
	}

	addressClassChain = []cascadia.Selector{
		cascadia.MustCompile(`[class*="company-address"]`),
		cascadia.MustCompile(`[class*="location-details"]`),
		cascadia.MustCompile(`[class*="address"]`),
	}
)

// Text-level fallbacks for content the class chains miss.
var (
	// phoneTextRe matches Indian mobile formats with optional +91/0
	// prefixes and common separators.
	phoneTextRe = regexp.MustCompile(`(?:\+?91[\s-]?|0)?[6-9]\d{4}[\s-]?\d{5}`)

	// phoneHintRe spots elements worth scanning even without a class hint.
	phoneHintRe = regexp.MustCompile(`\+91|Call`)

	emailTextRe = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
)
