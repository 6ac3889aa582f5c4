package textmatch

import (
	"strings"
	"unicode"
)

// Normalize converts text to its canonical comparison form: lowercase, all
// punctuation stripped (removed, not replaced), runs of whitespace collapsed
// to single spaces, and leading/trailing whitespace trimmed.
//
// The result is used for comparison only, never for display. Normalize is
// pure and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Words returns the whitespace-separated words of the normalized form of text.
func Words(text string) []string {
	return strings.Fields(Normalize(text))
}
