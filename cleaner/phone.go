// Package cleaner normalizes the raw strings the extractors pull out of
// the page: phone numbers, email addresses and free-form text fields.
// Everything here is a pure function with no I/O.
package cleaner

import "strings"

// Phone validates and normalizes an Indian phone number.
//
// Policy: strip all non-digits; a bare 10-digit number is returned
// as-is; an 11 or 12 digit number starting with the country code "91"
// or a trunk "0" is reduced to its trailing 10 digits; anything else is
// returned unchanged so the caller can keep the raw value as a
// fallback. Idempotent: Phone(Phone(x)) == Phone(x).
func Phone(raw string) string {
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) == 10:
		return d
	case (len(d) == 11 || len(d) == 12) &&
		(strings.HasPrefix(d, "91") || strings.HasPrefix(d, "0")):
		return d[len(d)-10:]
	}
	return raw
}
