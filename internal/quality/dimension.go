package quality

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DimensionFunc maps a finding's text to the key of the topical dimension it
// addresses. Findings with equal keys cover the same dimension.
type DimensionFunc func(text string) string

// FirstWords approximates a finding's dimension by its first n
// whitespace-delimited words, lowercased.
func FirstWords(n int) DimensionFunc {
	return func(text string) string {
		words := strings.Fields(text)
		if len(words) > n {
			words = words[:n]
		}
		// Casers carry state, so each call gets its own.
		return cases.Lower(language.Und).String(strings.Join(words, " "))
	}
}
