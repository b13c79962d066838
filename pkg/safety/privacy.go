package safety

import "regexp"

// Patterns are ordered: emails first so that phone-like digit runs inside an
// address never get half-masked.
var (
	emailPattern = regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w+\b`)
	phonePattern = regexp.MustCompile(`\b\+?\d[\d\s().-]{7,}\b`)
)

// Scrub replaces emails and phone numbers with placeholder tokens.
// It is idempotent: the placeholders themselves never match the patterns.
func Scrub(text string) string {
	out := emailPattern.ReplaceAllString(text, "[email]")
	out = phonePattern.ReplaceAllString(out, "[phone]")
	return out
}
