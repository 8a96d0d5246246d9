package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Normalize folds full-width ASCII to half width, strips punctuation down to
// letters, digits, hyphen and underscore, and collapses runs of whitespace.
func Normalize(query string) string {
	folded := width.Fold.String(query)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
