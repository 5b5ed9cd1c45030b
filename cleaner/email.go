package cleaner

import "strings"

// Email validates an email address and normalizes it to trimmed
// lowercase. The check is deliberately loose: the string must contain
// exactly one "@" with a "." somewhere in the domain part. Anything
// that fails returns "".
func Email(raw string) string {
	if raw == "" {
		return ""
	}

	trimmed := strings.TrimSpace(raw)
	at := strings.Index(trimmed, "@")
	if at <= 0 || at != strings.LastIndex(trimmed, "@") {
		return ""
	}
	domain := trimmed[at+1:]
	if !strings.Contains(domain, ".") {
		return ""
	}
	return strings.ToLower(trimmed)
}
