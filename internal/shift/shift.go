// Package shift authorizes claimed shifts and classifies event timing
// against configured shift windows. The validator never decides whether to
// reject an attempt; it only classifies, leaving policy to the orchestrator.
package shift

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Shift is a named work period with configured check-in/check-out windows.
type Shift string

const (
	Morning   Shift = "morning"
	Afternoon Shift = "afternoon"
	Night     Shift = "night"
)

// legacyAliases maps shift names from older Spanish-language deployments to
// their canonical names. Lookup happens after diacritics folding, so both
// "mañana" and "manana" resolve.
var legacyAliases = map[string]Shift{
	"manana": Morning,
	"tarde":  Afternoon,
	"noche":  Night,
}

// removeDiacritics removes diacritical marks from a string (e.g., "mañana" -> "manana").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Normalize canonicalizes a shift name for comparison: trimmed, lowercase,
// diacritics folded, legacy aliases resolved.
func Normalize(name string) Shift {
	s := strings.ToLower(strings.TrimSpace(removeDiacritics(name)))
	if canonical, ok := legacyAliases[s]; ok {
		return canonical
	}
	return Shift(s)
}
