// Package names canonicalizes player display names. All comparisons between
// player names in the application go through Normalize; ToDisplayForm is what
// gets persisted when a new guest is created. Casing is locale-aware for
// Turkish so that "İbrahim" lower-cases to "ibrahim" instead of picking up a
// combining dot.
package names

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lower = cases.Lower(language.Turkish)
	upper = cases.Upper(language.Turkish)
)

// Normalize produces the comparison form of a name: trimmed, internal
// whitespace runs collapsed to a single space, lower-cased with Turkish
// casing, then dotless ı folded onto i. The last step makes names typed on an
// ASCII keyboard ("DEVECI") compare equal to their properly cased form
// ("Deveci"). Never store the result.
func Normalize(name string) string {
	return strings.ReplaceAll(lower.String(collapse(name)), "ı", "i")
}

// ToDisplayForm produces the persisted form of a name: trimmed, whitespace
// collapsed, each token title-cased with Turkish casing rules.
// Normalize(ToDisplayForm(x)) == Normalize(x) holds for all inputs.
func ToDisplayForm(name string) string {
	fields := strings.Fields(name)
	for i, word := range fields {
		runes := []rune(word)
		fields[i] = upper.String(string(runes[0])) + lower.String(string(runes[1:]))
	}
	return strings.Join(fields, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
