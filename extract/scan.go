package extract

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/leadmart/cleaner"
	"github.com/use-agent/leadmart/models"
)

// scanProfileHTML backfills missing contact fields on the lead from a
// profile page's HTML. Populated fields are never touched; the address
// is only replaced while it is empty or implausibly short.
func scanProfileHTML(html, pageURL string, lead *models.Lead, minAddressLen int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Debug("profile HTML did not parse", "url", pageURL, "error", err)
		return
	}

	if lead.PhoneNumber == "" {
		lead.PhoneNumber = findPhone(doc)
	}
	if lead.Email == "" {
		lead.Email = findEmail(doc)
	}
	if lead.Address == "" || len(lead.Address) < minAddressLen {
		if addr := findAddress(doc); addr != "" {
			lead.Address = addr
		}
	}

	// Readable-text pass for anything the DOM heuristics missed.
	if lead.PhoneNumber == "" || lead.Email == "" {
		scanReadableText(html, pageURL, lead)
	}
}

// findPhone tries the class-hint chain, then elements whose text hints
// at a phone number. The first candidate the validator accepts wins.
func findPhone(doc *goquery.Document) string {
	for _, sel := range phoneClassChain {
		if phone := firstValidPhone(doc.FindMatcher(sel)); phone != "" {
			return phone
		}
	}

	var found string
	doc.Find("a, span, p, div, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > 120 || !phoneHintRe.MatchString(text) {
			return true
		}
		if match := phoneTextRe.FindString(text); match != "" {
			if phone := validPhone(match); phone != "" {
				found = phone
				return false
			}
		}
		return true
	})
	return found
}

func firstValidPhone(sel *goquery.Selection) string {
	var found string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if phone := validPhone(s.Text()); phone != "" {
			found = phone
			return false
		}
		return true
	})
	return found
}

// validPhone runs the validator and only accepts a fully normalized
// 10-digit result.
func validPhone(raw string) string {
	phone := cleaner.Phone(strings.TrimSpace(raw))
	if len(phone) != 10 {
		return ""
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return phone
}

// findEmail prefers mailto links, then any text that looks like an
// address, gated by the validator.
func findEmail(doc *goquery.Document) string {
	for _, sel := range mailtoChain {
		var found string
		doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if href, ok := s.Attr("href"); ok {
				candidate := strings.TrimPrefix(href, "mailto:")
				if email := cleaner.Email(candidate); email != "" {
					found = email
					return false
				}
			}
			if email := cleaner.Email(strings.TrimSpace(s.Text())); email != "" {
				found = email
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	if match := emailTextRe.FindString(doc.Text()); match != "" {
		return cleaner.Email(match)
	}
	return ""
}

// findAddress walks the address chain and joins the fragments the first
// productive selector yields.
func findAddress(doc *goquery.Document) string {
	for _, sel := range addressClassChain {
		var parts []string
		doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) <= 5 ||
				strings.Contains(text, "Address:") ||
				strings.Contains(text, "Location:") {
				return
			}
			parts = append(parts, text)
		})
		if len(parts) > 0 {
			return cleaner.Collapse(strings.Join(parts, " "))
		}
	}
	return ""
}

// scanReadableText extracts the page's main content and regex-scans it
// for contact data the DOM heuristics missed.
func scanReadableText(html, pageURL string, lead *models.Lead) {
	parsed, err := nurl.Parse(pageURL)
	if err != nil {
		return
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		slog.Debug("readability pass failed", "url", pageURL, "error", err)
		return
	}
	text := article.TextContent

	if lead.PhoneNumber == "" {
		for _, match := range phoneTextRe.FindAllString(text, 10) {
			if phone := validPhone(match); phone != "" {
				lead.PhoneNumber = phone
				break
			}
		}
	}
	if lead.Email == "" {
		if match := emailTextRe.FindString(text); match != "" {
			lead.Email = cleaner.Email(match)
		}
	}
}
