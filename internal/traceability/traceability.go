// Package traceability verifies that a report's headline answer is backed by
// identifiable findings of sufficient confidence and, transitively, by
// sources the report actually lists.
package traceability

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/research-gate/internal/model"
)

// ValidatorVersion is stamped into every result's metadata.
const ValidatorVersion = "1.0.0"

// Status is the verification verdict. Callers branch on these exact spellings.
type Status string

const (
	StatusVerified    Status = "VERIFIED"
	StatusSpeculative Status = "SPECULATIVE"
	StatusError       Status = "ERROR"
)

// maxFindingText bounds finding text in the support breakdown.
const maxFindingText = 100

// Support summarises the findings and sources behind the claim.
type Support struct {
	FindingIDs          []model.ID       `json:"finding_ids"`
	SourceIDs           []model.ID       `json:"source_ids"`
	AggregateConfidence model.Confidence `json:"aggregate_confidence"`
	MeetsPolicy         bool             `json:"meets_policy"`
}

// FindingSupport describes one supporting finding.
type FindingSupport struct {
	FindingID   model.ID         `json:"finding_id"`
	FindingText string           `json:"finding_text"`
	Confidence  model.Confidence `json:"confidence"`
	SourceIDs   []model.ID       `json:"source_ids"`
	SourceCount int              `json:"source_count"`
}

// Trace is the claim together with its evidence chain.
type Trace struct {
	AnswerClaim    string           `json:"answer_claim"`
	ExpectedAnswer string           `json:"expected_answer"`
	ClaimMatch     ClaimMatch       `json:"claim_match"`
	Support        Support          `json:"support"`
	Breakdown      []FindingSupport `json:"support_breakdown"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	ValidatorVersion string    `json:"validator_version"`
	PromptVersion    string    `json:"prompt_version"`
	ValidatedAt      time.Time `json:"validated_at"`
	Error            string    `json:"error,omitempty"`
}

// Result is the outcome of verifying one report.
type Result struct {
	Traceability Trace    `json:"traceability"`
	Status       Status   `json:"status"`
	Notes        string   `json:"notes"`
	Metadata     Metadata `json:"validation_metadata"`
}

// Option customises a single Verify call.
type Option func(*options)

type options struct {
	now time.Time
}

// WithNow fixes the metadata timestamp.
func WithNow(now time.Time) Option {
	return func(o *options) { o.now = now }
}

// Verify checks the report's answer claim against its supporting findings.
// It never returns an error: structural problems and dangling references
// produce an ERROR result, weak support produces SPECULATIVE.
func Verify(report *model.Report, opts ...Option) *Result {
	var o options
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
		ValidatorVersion: ValidatorVersion,
		PromptVersion:    report.PromptVersion(),
		ValidatedAt:      o.now,
	}

	if field := missingField(report); field != "" {
		return errorResult("Missing required field: "+field, meta)
	}

	td := report.Meta.TraceabilityData
	if strings.TrimSpace(td.AnswerClaim) == "" {
		return errorResult("No answer_claim in traceability_data", meta)
	}
	if len(report.ExecutiveSummary) == 0 {
		return errorResult("No executive_summary in output", meta)
	}

	expected := ExpectedAnswer(report.ExecutiveSummary[0])
	trace := Trace{
		AnswerClaim:    td.AnswerClaim,
		ExpectedAnswer: expected,
		ClaimMatch:     ClassifySimilarity(td.AnswerClaim, expected),
		Support: Support{
			FindingIDs:          append([]model.ID{}, td.SupportingFindingIDs...),
			SourceIDs:           []model.ID{},
			AggregateConfidence: NoConfidence,
		},
		Breakdown: []FindingSupport{},
	}

	if len(td.SupportingFindingIDs) == 0 {
		return finish(&Result{
			Traceability: trace,
			Status:       StatusSpeculative,
			Notes:        "No supporting findings identified for answer claim",
			Metadata:     meta,
		})
	}

	byID := report.FindingsByID()
	supporting := make([]model.Finding, 0, len(td.SupportingFindingIDs))
	var missing []model.ID
	for _, id := range td.SupportingFindingIDs {
		f, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		supporting = append(supporting, f)
	}
	if len(missing) > 0 {
		return errorResult("Referenced finding IDs not found in findings: "+formatIDs(missing), meta)
	}

	levels := make([]model.Confidence, len(supporting))
	for i, f := range supporting {
		levels[i] = f.Confidence
	}
	aggregate := AggregateConfidence(levels)
	meets := MeetsPolicy(aggregate)

	trace.Support.AggregateConfidence = aggregate
	trace.Support.MeetsPolicy = meets
	trace.Support.SourceIDs = uniqueSourceIDs(supporting)
	for _, f := range supporting {
		trace.Breakdown = append(trace.Breakdown, FindingSupport{
			FindingID:   f.ID,
			FindingText: truncate(f.Text, maxFindingText),
			Confidence:  f.Confidence,
			SourceIDs:   append([]model.ID{}, f.SourceIDs...),
			SourceCount: len(f.SourceIDs),
		})
	}

	res := &Result{Traceability: trace, Metadata: meta}
	if meets {
		res.Status = StatusVerified
		res.Notes = fmt.Sprintf("Answer supported by %d finding(s) with %s confidence", len(supporting), aggregate)
	} else {
		res.Status = StatusSpeculative
		res.Notes = fmt.Sprintf("Answer only supported by %s confidence finding(s) - needs H or M confidence", aggregate)
	}

	var missingSources []model.ID
	for _, id := range trace.Support.SourceIDs {
		if _, ok := report.Sources[id]; !ok {
			missingSources = append(missingSources, id)
		}
	}
	if len(missingSources) > 0 {
		res.Status = StatusError
		res.Notes = "Referenced source IDs not found: " + formatIDs(missingSources)
	}

	return finish(res)
}

// missingField names the first required field absent from the report.
func missingField(r *model.Report) string {
	switch {
	case r.ExecutiveSummary == nil:
		return "executive_summary"
	case r.KeyFindings == nil:
		return "key_findings"
	case r.Sources == nil:
		return "sources"
	case r.Meta.TraceabilityData == nil:
		return "meta.traceability_data"
	default:
		return ""
	}
}

// uniqueSourceIDs collects source ids across findings in first-seen order.
func uniqueSourceIDs(findings []model.Finding) []model.ID {
	seen := make(map[model.ID]struct{})
	out := []model.ID{}
	for _, f := range findings {
		for _, id := range f.SourceIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func formatIDs(ids []model.ID) string {
	return "[" + strings.Join(model.IDStrings(ids), ", ") + "]"
}

// truncate shortens s to limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

func finish(res *Result) *Result {
	zap.L().Debug("traceability: verified claim",
		zap.String("status", string(res.Status)),
		zap.String("aggregate_confidence", string(res.Traceability.Support.AggregateConfidence)),
		zap.String("claim_match", string(res.Traceability.ClaimMatch)),
		zap.Int("findings", len(res.Traceability.Support.FindingIDs)),
	)
	return res
}

func errorResult(msg string, meta Metadata) *Result {
	meta.Error = msg
	return finish(&Result{
		Traceability: Trace{
			ClaimMatch: MatchError,
			Support: Support{
				FindingIDs:          []model.ID{},
				SourceIDs:           []model.ID{},
				AggregateConfidence: NoConfidence,
			},
			Breakdown: []FindingSupport{},
		},
		Status:   StatusError,
		Notes:    "Validation error: " + msg,
		Metadata: meta,
	})
}
