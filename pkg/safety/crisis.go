package safety

import "regexp"

var crisisPattern = regexp.MustCompile(`(?i)(suicide|kill myself|kill (him|her|them)|end my life|self[- ]?harm|overdose|can't go on|i want to die)`)

// IsCrisis reports whether the text contains self-harm or violence phrases
// that must short-circuit the normal reply flow.
func IsCrisis(text string) bool {
	return crisisPattern.MatchString(text)
}
