package traceability

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ClaimMatch is a coarse lexical comparison between the answer claim and the
// headline text. It is informational and never affects Status.
type ClaimMatch string

const (
	MatchExact            ClaimMatch = "exact_match"
	MatchPartial          ClaimMatch = "partial_match"
	MatchHighOverlap      ClaimMatch = "high_overlap"
	MatchModerateOverlap  ClaimMatch = "moderate_overlap"
	MatchLowOverlap       ClaimMatch = "low_overlap"
	MatchInsufficientData ClaimMatch = "insufficient_data"
	MatchError            ClaimMatch = "error"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"to": {}, "from": {}, "in": {}, "on": {}, "at": {}, "for": {},
}

// ExpectedAnswer derives the headline answer from the first executive
// summary item: bracketed citations are dropped and a leading "1." marker is
// stripped. Anything else is kept as-is after trimming.
func ExpectedAnswer(headline string) string {
	text := headline
	if i := strings.IndexByte(text, '['); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "1."); ok {
		text = strings.TrimSpace(rest)
	}
	return text
}

// ClassifySimilarity compares claim and expected case-insensitively.
func ClassifySimilarity(claim, expected string) ClaimMatch {
	lower := cases.Lower(language.Und)
	a := strings.TrimSpace(lower.String(claim))
	b := strings.TrimSpace(lower.String(expected))

	if a == b {
		return MatchExact
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return MatchPartial
	}

	wa, wb := contentWords(a), contentWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return MatchInsufficientData
	}

	var shared int
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	ratio := float64(shared) / float64(max(len(wa), len(wb)))

	switch {
	case ratio >= 0.7:
		return MatchHighOverlap
	case ratio >= 0.4:
		return MatchModerateOverlap
	default:
		return MatchLowOverlap
	}
}

func contentWords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}
