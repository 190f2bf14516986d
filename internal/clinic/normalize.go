package clinic

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// normalizeKey case-folds s, strips diacritics and collapses whitespace so
// that "  Mentón " and "menton" compare equal. Content and configuration
// labels go through here once at ingestion; nothing on the per-pixel path
// calls it.
func normalizeKey(s string) string {
	s = strings.ReplaceAll(s, "\uFFFD", " ")
	s = folder.String(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	// Chains carry state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}

// nameTokens splits an asset name such as "Acné_Frente-02" into normalized
// alphabetic tokens: ["acne", "frente"].
func nameTokens(name string) []string {
	key := normalizeKey(name)
	return strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
