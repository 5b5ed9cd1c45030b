package cleaner

import (
	"strings"
	"testing"

	"github.com/use-agent/leadmart/models"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"ten digits unchanged", "9876543210", "9876543210"},
		{"formatted ten digits", "98765-43210", "9876543210"},
		{"country code twelve digits", "919876543210", "9876543210"},
		{"plus country code", "+91 98765 43210", "9876543210"},
		{"trunk prefix eleven digits", "09876543210", "9876543210"},
		{"too short returns raw", "12345", "12345"},
		{"too long returns raw", "9198765432101", "9198765432101"},
		{"non indian twelve digits returns raw", "449876543210", "449876543210"},
		{"words returns raw", "Call Now", "Call Now"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Phone(tt.in); got != tt.want {
				t.Errorf("Phone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPhone_Idempotent(t *testing.T) {
	inputs := []string{
		"", "9876543210", "+91 98765 43210", "09876543210",
		"12345", "not a number", "91-9876-543-210",
	}
	for _, in := range inputs {
		once := Phone(in)
		twice := Phone(once)
		if once != twice {
			t.Errorf("Phone not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"valid lowercased", "Foo@Bar.COM", "foo@bar.com"},
		{"valid trimmed", "  sales@example.in ", "sales@example.in"},
		{"no at sign", "foo.bar.com", ""},
		{"no dot in domain", "foo@barcom", ""},
		{"dot only before at", "foo.baz@barcom", ""},
		{"bare at", "@", ""},
		{"leading at", "@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Email(tt.in); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Acme Sports", "Acme Sports"},
		{"newlines and tabs", "Acme\nSports\tGoods", "Acme Sports Goods"},
		{"repeated spaces", "Acme    Sports", "Acme Sports"},
		{"surrounding whitespace", "  Acme Sports \n", "Acme Sports"},
		{"mixed runs", " a \n\n b\t\tc  ", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Collapse(tt.in); got != tt.want {
				t.Errorf("Collapse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLead(t *testing.T) {
	l := models.Lead{
		CompanyName: " Acme\nSports ",
		ProfileURL:  "https://example.com/acme",
		Price:       "Rs  250/\tPiece",
		Address:     "12, Industrial  Area,\nJalandhar",
		PhoneNumber: "9876543210",
		Email:       "sales@acme.in",
		Description: "Leather\t\tCricket Ball",
	}
	Lead(&l)

	fields := []string{
		l.CompanyName, l.ProfileURL, l.Price, l.Address,
		l.PhoneNumber, l.Email, l.Description,
	}
	for _, f := range fields {
		if strings.ContainsAny(f, "\n\t") {
			t.Errorf("field %q still contains newline or tab", f)
		}
		if strings.Contains(f, "  ") {
			t.Errorf("field %q still contains a double space", f)
		}
		if f != strings.TrimSpace(f) {
			t.Errorf("field %q not trimmed", f)
		}
	}
	if l.CompanyName != "Acme Sports" {
		t.Errorf("CompanyName = %q, want %q", l.CompanyName, "Acme Sports")
	}
	if l.Description != "Leather Cricket Ball" {
		t.Errorf("Description = %q, want %q", l.Description, "Leather Cricket Ball")
	}
}
