// Package relevancy ranks lead records against the run's search
// keyword. The score is deterministic and bounded to [0,100].
package relevancy

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/use-agent/leadmart/models"
)

// Weights of the individual scoring signals.
const (
	descExactBase    = 60
	descOccurBonus   = 2
	descOccurCap     = 10
	companyExactBase = 30
	phoneBonus       = 3
	emailBonus       = 2
	addressBonus     = 5

	descFuzzyFactor    = 0.6
	companyFuzzyFactor = 0.3
)

// Score rates how well a lead matches the keyword.
//
// The product description carries most of the weight: an exact
// substring match is worth 60 plus 2 per additional occurrence (capped
// at +10); otherwise a partial fuzzy ratio scaled by 0.6. The company
// name contributes the same policy at 30 / 0.3. Present contact fields
// add flat bonuses. The result is clamped to 100; no floor clamp is
// needed since every term is non-negative.
func Score(l *models.Lead, keyword string) int {
	score := 0
	kw := strings.ToLower(keyword)

	desc := strings.ToLower(l.Description)
	if kw != "" && strings.Contains(desc, kw) {
		score += descExactBase
		score += min(descOccurCap, strings.Count(desc, kw)*descOccurBonus)
	} else {
		score += int(float64(partialRatio(kw, desc)) * descFuzzyFactor)
	}

	company := strings.ToLower(l.CompanyName)
	if kw != "" && strings.Contains(company, kw) {
		score += companyExactBase
	} else {
		score += int(float64(partialRatio(kw, company)) * companyFuzzyFactor)
	}

	if l.PhoneNumber != "" {
		score += phoneBonus
	}
	if l.Email != "" {
		score += emailBonus
	}
	if l.Address != "" {
		score += addressBonus
	}

	return min(100, score)
}

// partialRatio is fuzzy.PartialRatio guarded against empty inputs,
// which the library treats as a degenerate full match.
func partialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return fuzzy.PartialRatio(a, b)
}
