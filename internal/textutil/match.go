package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// MatchKey returns a comparison key for catalog names: case folded, with
// everything except letters and digits removed. Returns "" when nothing
// comparable remains.
func MatchKey(value string) string {
	folded := Fold(value)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fold returns the case-folded, trimmed form of value.
// Casers carry state, so each call builds its own.
func Fold(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}
