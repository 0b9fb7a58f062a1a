package quality

import (
	"fmt"
	"math"
	"time"

	"github.com/sells-group/research-gate/internal/model"
)

// FreshnessWindowDays is how old a source may be and still count as recent.
const FreshnessWindowDays = 180

const sourceDateLayout = "2006-01-02"

// scoreCoverage = distinct dimensions / totalDimensions * 10, capped at 10.
func scoreCoverage(findings []model.Finding, totalDimensions int, dimension DimensionFunc) measure {
	if totalDimensions <= 0 {
		return measure{justification: "Error: total_dimensions must be > 0"}
	}

	seen := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		seen[dimension(f.Text)] = struct{}{}
	}
	addressed := len(seen)
	score := math.Min(float64(addressed)/float64(totalDimensions)*10, 10)

	justification := fmt.Sprintf("%d/%d dimensions addressed", addressed, totalDimensions)
	switch {
	case score >= 9.0:
		justification += " (comprehensive coverage)"
	case score >= 7.0:
		justification += " (good coverage with minor gaps)"
	default:
		justification += " (significant gaps in coverage)"
	}
	return measure{score: score, justification: justification}
}

// scoreEvidence = findings with H or M confidence / all findings * 10.
func scoreEvidence(findings []model.Finding) measure {
	if len(findings) == 0 {
		return measure{justification: "No findings to assess"}
	}

	var high, medium, low int
	for _, f := range findings {
		switch f.Confidence {
		case model.ConfidenceHigh:
			high++
		case model.ConfidenceMedium:
			medium++
		case model.ConfidenceLow:
			low++
		}
	}
	supported := high + medium
	score := float64(supported) / float64(len(findings)) * 10

	justification := fmt.Sprintf("%d/%d findings with H/M confidence (H:%d, M:%d, L:%d)",
		supported, len(findings), high, medium, low)
	switch {
	case score >= 8.0:
		justification += " - strong primary source support"
	case score >= 6.0:
		justification += " - adequate evidence base"
	default:
		justification += " - insufficient primary sources"
	}
	return measure{score: score, justification: justification}
}

// scoreFreshness = sources dated within the window / all sources * 10.
// Undated and unparseable sources stay in the denominator.
func scoreFreshness(sources map[model.ID]model.Source, now time.Time) measure {
	if len(sources) == 0 {
		return measure{justification: "No sources to assess"}
	}

	// Calendar date in now's own zone; source dates carry no zone.
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -FreshnessWindowDays)

	var recent, parseErrors int
	for _, src := range sources {
		if src.Date == "" {
			continue
		}
		date, err := time.Parse(sourceDateLayout, src.Date)
		if err != nil {
			parseErrors++
			continue
		}
		if !date.Before(cutoff) {
			recent++
		}
	}
	score := float64(recent) / float64(len(sources)) * 10

	justification := fmt.Sprintf("%d/%d sources ≤ %d days", recent, len(sources), FreshnessWindowDays)
	if parseErrors > 0 {
		justification += fmt.Sprintf(" (%d date parse errors)", parseErrors)
	}
	switch {
	case score >= 8.0:
		justification += " - predominantly recent sources"
	case score >= 5.0:
		justification += " - mixed recency"
	default:
		justification += " - mostly dated sources"
	}
	return measure{score: score, justification: justification}
}

// scoreContradictions = 10 - 2 * unresolved disagreements, floored at 0.
func scoreContradictions(disagreements []model.Disagreement) measure {
	if len(disagreements) == 0 {
		return measure{score: 10, justification: "No contradictions found (0/0 resolved) - no conflicts"}
	}

	var unresolved int
	for _, d := range disagreements {
		if d.Unresolved() {
			unresolved++
		}
	}
	score := math.Max(10-2*float64(unresolved), 0)
	resolved := len(disagreements) - unresolved

	justification := fmt.Sprintf("%d unresolved conflicts (%d/%d resolved)", unresolved, resolved, len(disagreements))
	switch {
	case score >= 8.0:
		justification += " - contradictions well-handled"
	case score >= 6.0:
		justification += " - some unresolved conflicts remain"
	default:
		justification += " - significant unresolved contradictions"
	}
	return measure{score: score, justification: justification}
}
