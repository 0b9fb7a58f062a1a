// Package quality scores a research report against the four-criterion
// quality rubric (coverage, evidence, freshness, contradictions) and maps the
// average onto a Production / Marginal / Insufficient threshold.
package quality

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/research-gate/internal/model"
)

// ValidatorVersion is stamped into every result's metadata.
const ValidatorVersion = "1.0.0"

// Threshold is the tier a report's average score falls into. Callers branch
// on these exact spellings.
type Threshold string

const (
	ThresholdProduction   Threshold = "Production"
	ThresholdMarginal     Threshold = "Marginal"
	ThresholdInsufficient Threshold = "Insufficient"
)

// Criterion is one rounded sub-score with its justification. Score is nil
// when the criterion does not apply.
type Criterion struct {
	Score         *float64 `json:"score"`
	Justification string   `json:"justification"`
}

// Assessment holds the four sub-scores and their average.
type Assessment struct {
	Coverage       Criterion `json:"coverage"`
	Evidence       Criterion `json:"evidence"`
	Freshness      Criterion `json:"freshness"`
	Contradictions Criterion `json:"contradictions"`
	Average        float64   `json:"average"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	ValidatorVersion    string    `json:"validator_version"`
	PromptVersion       string    `json:"prompt_version"`
	ValidatedAt         time.Time `json:"validated_at"`
	TotalDimensionsUsed int       `json:"total_dimensions_used"`
	FreshnessApplicable bool      `json:"freshness_applicable"`
	Error               string    `json:"error,omitempty"`
}

// Result is the outcome of scoring one report.
type Result struct {
	Assessment         Assessment `json:"quality_assessment"`
	Threshold          Threshold  `json:"threshold"`
	RecommendedAction  string     `json:"recommended_action"`
	OrchestratorAction string     `json:"orchestrator_action"`
	Metadata           Metadata   `json:"validation_metadata"`
}

// Option customises a single Score call.
type Option func(*options)

type options struct {
	freshness bool
	now       time.Time
	dimension DimensionFunc
}

// WithFreshness toggles whether the freshness criterion participates in the
// average. When false, freshness is reported as absent rather than zero.
func WithFreshness(applicable bool) Option {
	return func(o *options) { o.freshness = applicable }
}

// WithNow fixes the evaluation instant used for the freshness cutoff and the
// metadata timestamp. The cutoff counts back from now's calendar date in
// now's location.
func WithNow(now time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDimensionStrategy replaces the function that maps finding text to a
// coverage dimension key.
func WithDimensionStrategy(fn DimensionFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.dimension = fn
		}
	}
}

// measure is an unrounded sub-score.
type measure struct {
	score         float64
	justification string
	absent        bool
}

func (m measure) criterion() Criterion {
	if m.absent {
		return Criterion{Justification: m.justification}
	}
	s := round1(m.score)
	return Criterion{Score: &s, Justification: m.justification}
}

// Score evaluates report against the rubric. totalDimensions is the number of
// topical dimensions the research objective expects; a non-positive value
// zeroes coverage but still scores the other criteria. Score never panics on
// a decoded report and never returns an error: malformed input produces an
// Insufficient result whose justifications name the problem.
func Score(report *model.Report, totalDimensions int, opts ...Option) *Result {
	o := options{freshness: true, dimension: FirstWords(3)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now.IsZero() {
		o.now = time.Now()
	}
	if report == nil {
		report = &model.Report{}
	}

	meta := Metadata{
		ValidatorVersion:    ValidatorVersion,
		PromptVersion:       report.PromptVersion(),
		ValidatedAt:         o.now,
		TotalDimensionsUsed: totalDimensions,
		FreshnessApplicable: o.freshness,
	}

	if len(report.KeyFindings) == 0 {
		return errorResult("No findings in research output", meta)
	}
	if len(report.Sources) == 0 {
		return errorResult("No sources in research output", meta)
	}

	coverage := scoreCoverage(report.KeyFindings, totalDimensions, o.dimension)
	evidence := scoreEvidence(report.KeyFindings)
	freshness := measure{absent: true, justification: "N/A - Stable topic, freshness not applicable"}
	if o.freshness {
		freshness = scoreFreshness(report.Sources, o.now)
	}
	contradictions := scoreContradictions(report.Meta.Disagreements)

	sum, n := 0.0, 0
	for _, m := range []measure{coverage, evidence, freshness, contradictions} {
		if m.absent {
			continue
		}
		sum += m.score
		n++
	}
	average := sum / float64(n)
	tier := determineThreshold(average)

	zap.L().Debug("quality: scored report",
		zap.String("prompt_version", meta.PromptVersion),
		zap.Float64("coverage", coverage.score),
		zap.Float64("evidence", evidence.score),
		zap.Float64("contradictions", contradictions.score),
		zap.Float64("average", average),
		zap.String("threshold", string(tier.threshold)),
	)

	return &Result{
		Assessment: Assessment{
			Coverage:       coverage.criterion(),
			Evidence:       evidence.criterion(),
			Freshness:      freshness.criterion(),
			Contradictions: contradictions.criterion(),
			Average:        round1(average),
		},
		Threshold:          tier.threshold,
		RecommendedAction:  tier.action,
		OrchestratorAction: tier.orchestratorAction,
		Metadata:           meta,
	}
}

// errorResult is returned when the report lacks the fields needed to score.
func errorResult(msg string, meta Metadata) *Result {
	zero := func() *float64 { v := 0.0; return &v }
	meta.Error = msg

	zap.L().Debug("quality: cannot score report", zap.String("reason", msg))

	return &Result{
		Assessment: Assessment{
			Coverage:       Criterion{Score: zero(), Justification: msg},
			Evidence:       Criterion{Score: zero(), Justification: msg},
			Freshness:      Criterion{Justification: "N/A"},
			Contradictions: Criterion{Score: zero(), Justification: msg},
		},
		Threshold:          ThresholdInsufficient,
		RecommendedAction:  "Fix validation error: " + msg,
		OrchestratorAction: "Cannot use - validation failed",
		Metadata:           meta,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
