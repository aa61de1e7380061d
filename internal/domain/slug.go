package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength matches the slug column width.
const MaxSlugLength = 220

// Slugify lowercases s, strips accents, keeps letters, digits and underscores and joins words with '-'.
// Non-Latin letters are kept so titles in any script produce a usable slug.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	out := make([]rune, 0, len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingDash && len(out) > 0 {
				out = append(out, '-')
			}
			pendingDash = false
			out = append(out, r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}
	if len(out) > MaxSlugLength {
		out = out[:MaxSlugLength]
	}
	return strings.Trim(string(out), "-_")
}
