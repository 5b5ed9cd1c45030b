package cleaner

import (
	"strings"

	"github.com/use-agent/leadmart/models"
)

// Collapse flattens a string for tabular export: newlines and tabs
// become spaces, runs of spaces collapse to one, leading/trailing
// whitespace is trimmed.
func Collapse(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// Lead sanitizes every string field of a lead record in place. Run this
// once, right before the record is frozen and appended to the run's
// collection.
func Lead(l *models.Lead) {
	l.CompanyName = Collapse(l.CompanyName)
	l.ProfileURL = Collapse(l.ProfileURL)
	l.Price = Collapse(l.Price)
	l.Address = Collapse(l.Address)
	l.PhoneNumber = Collapse(l.PhoneNumber)
	l.Email = Collapse(l.Email)
	l.Description = Collapse(l.Description)
}
