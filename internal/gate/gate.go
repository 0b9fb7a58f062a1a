// Package gate combines the quality and traceability verdicts into a single
// downstream-use decision.
package gate

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/research-gate/internal/model"
	"github.com/sells-group/research-gate/internal/quality"
	"github.com/sells-group/research-gate/internal/traceability"
)

// Decision is what the orchestrator should do with the report.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReview  Decision = "review"
	DecisionReject  Decision = "reject"
)

// Verdict holds both evaluator results and the combined decision.
type Verdict struct {
	Decision     Decision             `json:"decision"`
	Reasons      []string             `json:"reasons"`
	Quality      *quality.Result      `json:"quality"`
	Traceability *traceability.Result `json:"traceability"`
	EvaluatedAt  time.Time            `json:"evaluated_at"`
}

// Passed reports whether the report may be used without review.
func (v *Verdict) Passed() bool {
	return v.Decision == DecisionApprove
}

// ManualReview reports whether a human should look at the report first.
func (v *Verdict) ManualReview() bool {
	return v.Decision == DecisionReview
}

// Option customises a single Evaluate call.
type Option func(*options)

type options struct {
	freshness bool
	now       time.Time
}

// WithFreshness toggles the freshness criterion of the quality score.
func WithFreshness(applicable bool) Option {
	return func(o *options) { o.freshness = applicable }
}

// WithNow fixes the evaluation instant shared by both evaluators.
func WithNow(now time.Time) Option {
	return func(o *options) { o.now = now }
}

// Evaluate scores and verifies report against one captured instant. The
// decision is reject if either evaluator returned its lowest verdict, review
// if either was borderline, and approve otherwise.
func Evaluate(report *model.Report, totalDimensions int, opts ...Option) *Verdict {
	o := options{freshness: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now.IsZero() {
		o.now = time.Now()
	}

	q := quality.Score(report, totalDimensions,
		quality.WithNow(o.now),
		quality.WithFreshness(o.freshness),
	)
	tr := traceability.Verify(report, traceability.WithNow(o.now))

	v := &Verdict{
		Quality:      q,
		Traceability: tr,
		EvaluatedAt:  o.now,
	}
	v.Decision, v.Reasons = decide(q, tr)

	zap.L().Debug("gate: evaluated report",
		zap.String("decision", string(v.Decision)),
		zap.String("threshold", string(q.Threshold)),
		zap.String("status", string(tr.Status)),
	)
	return v
}

func decide(q *quality.Result, tr *traceability.Result) (Decision, []string) {
	qReason := fmt.Sprintf("quality %s (average %.1f): %s", q.Threshold, q.Assessment.Average, q.RecommendedAction)
	tReason := fmt.Sprintf("traceability %s: %s", tr.Status, tr.Notes)

	var rejects, reviews []string
	switch q.Threshold {
	case quality.ThresholdInsufficient:
		rejects = append(rejects, qReason)
	case quality.ThresholdMarginal:
		reviews = append(reviews, qReason)
	}
	switch tr.Status {
	case traceability.StatusError:
		rejects = append(rejects, tReason)
	case traceability.StatusSpeculative:
		reviews = append(reviews, tReason)
	}

	switch {
	case len(rejects) > 0:
		return DecisionReject, append(rejects, reviews...)
	case len(reviews) > 0:
		return DecisionReview, reviews
	default:
		return DecisionApprove, []string{qReason, tReason}
	}
}
