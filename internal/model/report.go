// Package model defines the research report records consumed by the
// quality and traceability evaluators.
package model

// Confidence is the ordinal evidence-strength tag attached to a finding.
type Confidence string

const (
	ConfidenceHigh   Confidence = "H"
	ConfidenceMedium Confidence = "M"
	ConfidenceLow    Confidence = "L"
)

// Rank orders confidence levels H > M > L. Unknown values rank 0.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// StanceUncertain marks a disagreement the report could not resolve. Every
// other final stance counts as resolved.
const StanceUncertain = "uncertain"

// Report is a single research report snapshot. Nil slices and maps mean the
// field was absent from the decoded input; empty ones mean it was present
// but empty.
type Report struct {
	ExecutiveSummary []string      `json:"executive_summary" yaml:"executive_summary"`
	KeyFindings      []Finding     `json:"key_findings" yaml:"key_findings"`
	Sources          map[ID]Source `json:"sources" yaml:"sources"`
	Meta             Meta          `json:"meta" yaml:"meta"`
}

// Finding is a single extracted claim with its citing sources.
type Finding struct {
	ID         ID         `json:"id" yaml:"id"`
	Text       string     `json:"text" yaml:"text"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
	SourceIDs  []ID       `json:"source_ids" yaml:"source_ids"`
}

// Source describes a cited document. Only Date is scored.
type Source struct {
	Date      string `json:"date,omitempty" yaml:"date,omitempty"`
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Disagreement records a conflict between sources and how it was settled.
type Disagreement struct {
	Claim       string     `json:"claim" yaml:"claim"`
	FinalStance string     `json:"final_stance" yaml:"final_stance"`
	Confidence  Confidence `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// Unresolved reports whether the disagreement ended in an uncertain stance.
func (d Disagreement) Unresolved() bool {
	return d.FinalStance == StanceUncertain
}

// Meta carries producer-side bookkeeping about the report.
type Meta struct {
	Disagreements    []Disagreement    `json:"disagreements,omitempty" yaml:"disagreements,omitempty"`
	TraceabilityData *TraceabilityData `json:"traceability_data,omitempty" yaml:"traceability_data,omitempty"`
	RunMetadata      RunMetadata       `json:"run_metadata" yaml:"run_metadata"`
}

// TraceabilityData links the headline answer to the findings that back it.
type TraceabilityData struct {
	AnswerClaim          string `json:"answer_claim" yaml:"answer_claim"`
	SupportingFindingIDs []ID   `json:"supporting_finding_ids" yaml:"supporting_finding_ids"`
}

// RunMetadata describes the producer run.
type RunMetadata struct {
	PromptVersion string `json:"prompt_version,omitempty" yaml:"prompt_version,omitempty"`
}

// UnknownPromptVersion is reported when the producer did not record one.
const UnknownPromptVersion = "unknown"

// PromptVersion returns the producer prompt version or UnknownPromptVersion.
func (r *Report) PromptVersion() string {
	if r == nil || r.Meta.RunMetadata.PromptVersion == "" {
		return UnknownPromptVersion
	}
	return r.Meta.RunMetadata.PromptVersion
}

// FindingsByID indexes key findings by id. A later finding with a duplicate
// id replaces the earlier one.
func (r *Report) FindingsByID() map[ID]Finding {
	byID := make(map[ID]Finding, len(r.KeyFindings))
	for _, f := range r.KeyFindings {
		byID[f.ID] = f
	}
	return byID
}
