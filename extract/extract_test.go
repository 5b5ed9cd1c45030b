package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ysmood/gson"

	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
)

func profileTestConfig() config.ProfileConfig {
	return config.ProfileConfig{
		HTTPFirst:     true,
		HTTPTimeout:   time.Second,
		ReadyTimeout:  time.Second,
		MinAddressLen: 10,
	}
}

const fullCardHTML = `
<div class="card">
  <div class="producttitle">
    <a class="cardlinks" href="https://www.example.com/products/leather-cricket-ball">
      Leather Cricket Ball, Grade A
    </a>
  </div>
  <p class="price">Rs 450/Piece</p>
  <div class="companyname">
    <a class="cardlinks" href="https://www.example.com/sellers/acme-sports">Acme Sports</a>
  </div>
  <div class="newLocationUi"><span class="highlight">Meerut</span></div>
  <div id="citytt1"><p>12 Stadium Road, Meerut, Uttar Pradesh 250001</p></div>
</div>`

func TestParseCard_AllFields(t *testing.T) {
	lead := parseCard(fullCardHTML)

	if lead.Description != "Leather Cricket Ball, Grade A" {
		t.Errorf("Description = %q", lead.Description)
	}
	if lead.ProfileURL != "https://www.example.com/products/leather-cricket-ball" {
		t.Errorf("ProfileURL = %q", lead.ProfileURL)
	}
	if lead.Price != "Rs 450/Piece" {
		t.Errorf("Price = %q", lead.Price)
	}
	if lead.CompanyName != "Acme Sports" {
		t.Errorf("CompanyName = %q", lead.CompanyName)
	}
	// The detailed block should win over the short marker.
	if lead.Address != "12 Stadium Road, Meerut, Uttar Pradesh 250001" {
		t.Errorf("Address = %q", lead.Address)
	}
}

func TestParseCard_MissingPriceKeepsSentinel(t *testing.T) {
	html := `<div class="card">
	  <div class="producttitle"><a class="cardlinks" href="/p/1">Cricket Ball</a></div>
	</div>`

	lead := parseCard(html)
	if lead.Price != models.PriceNotListed {
		t.Errorf("Price = %q, want %q", lead.Price, models.PriceNotListed)
	}
}

func TestParseCard_CompanyLinkFallback(t *testing.T) {
	// No product link, so the profile URL must come from the company link.
	html := `<div class="card">
	  <div class="companyname"><a class="cardlinks" href="/sellers/acme">Acme Sports</a></div>
	</div>`

	lead := parseCard(html)
	if lead.ProfileURL != "/sellers/acme" {
		t.Errorf("ProfileURL = %q, want company link", lead.ProfileURL)
	}
}

func TestParseCard_ShortLocationWhenNoFullAddress(t *testing.T) {
	html := `<div class="card">
	  <div class="newLocationUi"><span class="highlight">Jalandhar</span></div>
	</div>`

	lead := parseCard(html)
	if lead.Address != "Jalandhar" {
		t.Errorf("Address = %q, want short location", lead.Address)
	}
}

func TestParseCard_GarbageHTML(t *testing.T) {
	lead := parseCard("<<<not really html")
	if lead.CompanyName != "" || lead.Description != "" {
		t.Errorf("expected empty lead, got %+v", lead)
	}
	if lead.Price != models.PriceNotListed {
		t.Errorf("Price = %q, want sentinel", lead.Price)
	}
}

const profileHTML = `
<html><body>
  <h1>Acme Sports</h1>
  <div class="company-address">12 Stadium Road, Meerut, Uttar Pradesh 250001</div>
  <span class="phone-number">+91 98765 43210</span>
  <a href="mailto:sales@acmesports.example.com">Contact us</a>
  <p>We manufacture leather cricket balls since 1987. Our factory spans two
     acres on the outskirts of Meerut and supplies clubs across the country
     with match-grade and practice-grade equipment for every season.</p>
</body></html>`

func TestScanProfileHTML_FillsMissingFields(t *testing.T) {
	lead := models.NewLead()
	scanProfileHTML(profileHTML, "https://www.example.com/sellers/acme", &lead, 10)

	if lead.PhoneNumber != "9876543210" {
		t.Errorf("PhoneNumber = %q", lead.PhoneNumber)
	}
	if lead.Email != "sales@acmesports.example.com" {
		t.Errorf("Email = %q", lead.Email)
	}
	if !strings.Contains(lead.Address, "12 Stadium Road") {
		t.Errorf("Address = %q", lead.Address)
	}
}

func TestScanProfileHTML_NeverOverwritesPopulatedFields(t *testing.T) {
	lead := models.NewLead()
	lead.PhoneNumber = "1112223334"
	lead.Email = "existing@example.com"
	lead.Address = "Established Address, Long Enough Street"

	scanProfileHTML(profileHTML, "https://www.example.com/sellers/acme", &lead, 10)

	if lead.PhoneNumber != "1112223334" {
		t.Errorf("PhoneNumber overwritten: %q", lead.PhoneNumber)
	}
	if lead.Email != "existing@example.com" {
		t.Errorf("Email overwritten: %q", lead.Email)
	}
	if lead.Address != "Established Address, Long Enough Street" {
		t.Errorf("Address overwritten: %q", lead.Address)
	}
}

func TestScanProfileHTML_ShortAddressEligibleForBackfill(t *testing.T) {
	lead := models.NewLead()
	lead.Address = "Meerut" // below the plausibility floor

	scanProfileHTML(profileHTML, "https://www.example.com/sellers/acme", &lead, 10)

	if !strings.Contains(lead.Address, "12 Stadium Road") {
		t.Errorf("short address not upgraded: %q", lead.Address)
	}
}

func TestScanProfileHTML_SkipsLabelOnlyAddressFragments(t *testing.T) {
	html := `<html><body>
	  <div class="company-address">Address:</div>
	  <div class="company-address">45 Mill Lane, Jalandhar, Punjab 144001</div>
	</body></html>`

	lead := models.NewLead()
	scanProfileHTML(html, "https://www.example.com/x", &lead, 10)

	if strings.Contains(lead.Address, "Address:") {
		t.Errorf("label fragment leaked into address: %q", lead.Address)
	}
	if !strings.Contains(lead.Address, "45 Mill Lane") {
		t.Errorf("Address = %q", lead.Address)
	}
}

func TestScanProfileHTML_PhoneFromTextHint(t *testing.T) {
	// No class hints at all; the phone sits in plain text with a +91 marker.
	html := `<html><body>
	  <span>Call +91-87654-32109 for orders</span>
	</body></html>`

	lead := models.NewLead()
	scanProfileHTML(html, "https://www.example.com/x", &lead, 10)

	if lead.PhoneNumber != "8765432109" {
		t.Errorf("PhoneNumber = %q", lead.PhoneNumber)
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+91 98765 43210", "9876543210"},
		{"09876543210", "9876543210"},
		{"9876543210", "9876543210"},
		{"12345", ""},
		{"not a phone", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := validPhone(tt.in); got != tt.want {
			t.Errorf("validPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNeedsRendering(t *testing.T) {
	shell := []byte(`<html><body><div id="root"></div>` +
		strings.Repeat(`<script src="/chunk.js"></script>`, 12) +
		`</body></html>`)
	if !needsRendering(shell) {
		t.Error("SPA shell not flagged for rendering")
	}

	var b strings.Builder
	b.WriteString("<html><body><p>")
	for i := 0; i < 60; i++ {
		b.WriteString("Plenty of server-rendered prose about cricket equipment. ")
	}
	b.WriteString("</p></body></html>")
	if needsRendering([]byte(b.String())) {
		t.Error("content-rich page flagged for rendering")
	}
}

func TestControlEnabled(t *testing.T) {
	tests := []struct {
		name string
		prop gson.JSON
		err  error
		want bool
	}{
		{"disabled control", gson.New(true), nil, false},
		{"enabled control", gson.New(false), nil, true},
		{"property absent", gson.New(nil), nil, true},
		{"property read failed", gson.JSON{}, errors.New("context canceled"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := controlEnabled(tt.prop, tt.err); got != tt.want {
				t.Errorf("controlEnabled(%v, %v) = %v, want %v", tt.prop, tt.err, got, tt.want)
			}
		})
	}
}

func TestEnrich_SkipsWhenNothingToDo(t *testing.T) {
	e := NewProfileEnricher(nil, profileTestConfig())

	// No profile URL: nothing to visit.
	lead := models.NewLead()
	if err := e.Enrich(context.Background(), &lead); err != nil {
		t.Fatalf("Enrich without URL: %v", err)
	}

	// Both contact channels present: nothing to gain.
	lead = models.NewLead()
	lead.ProfileURL = "https://www.example.com/sellers/acme"
	lead.PhoneNumber = "9876543210"
	lead.Email = "sales@example.com"
	if err := e.Enrich(context.Background(), &lead); err != nil {
		t.Fatalf("Enrich with full contacts: %v", err)
	}
}
