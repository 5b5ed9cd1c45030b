package models

// PriceNotListed is the sentinel stored in Lead.Price when a listing
// card carries no price element.
const PriceNotListed = "Not Listed"

// Lead is one extracted seller/product record. Field values are raw as
// extracted until cleaner.Lead has run; after that they contain no
// tabs, newlines or repeated internal spaces.
type Lead struct {
	CompanyName    string
	ProfileURL     string
	Price          string
	Address        string
	PhoneNumber    string
	Email          string
	Description    string
	RelevancyScore int
}

// NewLead returns a Lead with the Price sentinel pre-set, matching the
// listing extractor's default for cards without a price element.
func NewLead() Lead {
	return Lead{Price: PriceNotListed}
}

// Admissible reports whether the record carries enough identity to be
// worth keeping: a company name or a product description.
func (l *Lead) Admissible() bool {
	return l.CompanyName != "" || l.Description != ""
}
