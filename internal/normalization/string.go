package normalization

import "strings"

// ParseInputString trims surrounding whitespace and collapses internal runs of
// whitespace to a single space.
func ParseInputString(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// ParseEmail normalizes an email address for storage and lookup.
func ParseEmail(s string) string {
	return strings.ToLower(ParseInputString(s))
}
