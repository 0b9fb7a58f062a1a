package traceability

import "github.com/sells-group/research-gate/internal/model"

// NoConfidence is the aggregate of an empty set of findings.
const NoConfidence model.Confidence = "None"

// AggregateConfidence returns the strongest level present, by precedence
// H > M > L. A non-empty set with neither H nor M aggregates to L.
func AggregateConfidence(levels []model.Confidence) model.Confidence {
	if len(levels) == 0 {
		return NoConfidence
	}
	hasMedium := false
	for _, c := range levels {
		switch c {
		case model.ConfidenceHigh:
			return model.ConfidenceHigh
		case model.ConfidenceMedium:
			hasMedium = true
		}
	}
	if hasMedium {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

// MeetsPolicy reports whether an aggregate confidence is strong enough for a
// claim to count as verified.
func MeetsPolicy(aggregate model.Confidence) bool {
	return aggregate == model.ConfidenceHigh || aggregate == model.ConfidenceMedium
}
