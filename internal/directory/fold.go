package directory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// prefixes are matched against the folded form (final sigma already
// folded to σ) and dropped; users often type
// "Δήμος Χαλκιδέων" for the entry "Χαλκιδέων".
var prefixes = []string{"δημοσ ", "δ. ", "δ.", "municipality of "}

// Fold returns the comparison form of a municipality name: accents removed,
// case folded (final sigma included), hyphens and whitespace runs collapsed
// to single spaces, and a leading "Δήμος" dropped.
func Fold(s string) string {
	// Transformers keep state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	folded := cases.Fold().String(stripped)
	folded = strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, folded)
	folded = strings.Join(strings.Fields(folded), " ")

	for _, p := range prefixes {
		if strings.HasPrefix(folded, p) && len(folded) > len(p) {
			folded = strings.TrimSpace(strings.TrimPrefix(folded, p))
			break
		}
	}
	return folded
}
