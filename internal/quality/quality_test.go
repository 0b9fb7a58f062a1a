package quality

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/research-gate/internal/model"
)

var testNow = time.Date(2025, time.February, 1, 12, 0, 0, 0, time.UTC)

func allHighReport() *model.Report {
	return &model.Report{
		KeyFindings: []model.Finding{
			{ID: "1", Text: "Desktop Memory uses automatic chat synthesis", Confidence: model.ConfidenceHigh, SourceIDs: []model.ID{"1", "2"}},
			{ID: "2", Text: "Desktop Memory uses 24-hour update cycles", Confidence: model.ConfidenceMedium, SourceIDs: []model.ID{"1"}},
			{ID: "3", Text: "Code Memory uses CLAUDE.md file system", Confidence: model.ConfidenceHigh, SourceIDs: []model.ID{"3", "4"}},
			{ID: "4", Text: "Code Memory uses Git integration", Confidence: model.ConfidenceMedium, SourceIDs: []model.ID{"3"}},
			{ID: "5", Text: "Integration requires manual handoff protocols", Confidence: model.ConfidenceMedium, SourceIDs: []model.ID{"5"}},
		},
		Sources: map[model.ID]model.Source{
			"1": {Date: "2025-01-15", Publisher: "Anthropic"},
			"2": {Date: "2025-01-10", Publisher: "Anthropic Docs"},
			"3": {Date: "2025-01-20", Publisher: "Code Docs"},
			"4": {Date: "2024-12-15", Publisher: "GitHub"},
			"5": {Date: "2025-01-18", Publisher: "Workflow"},
		},
		Meta: model.Meta{
			RunMetadata: model.RunMetadata{PromptVersion: "4.8.1"},
		},
	}
}

func scoreOf(t *testing.T, c Criterion) float64 {
	t.Helper()
	require.NotNil(t, c.Score)
	return *c.Score
}

func TestScore_AllHighReport(t *testing.T) {
	res := Score(allHighReport(), 3, WithNow(testNow))

	assert.InDelta(t, 10.0, scoreOf(t, res.Assessment.Coverage), 0.001)
	assert.InDelta(t, 10.0, scoreOf(t, res.Assessment.Evidence), 0.001)
	assert.InDelta(t, 10.0, scoreOf(t, res.Assessment.Freshness), 0.001)
	assert.InDelta(t, 10.0, scoreOf(t, res.Assessment.Contradictions), 0.001)
	assert.InDelta(t, 10.0, res.Assessment.Average, 0.001)
	assert.Equal(t, ThresholdProduction, res.Threshold)
	assert.Equal(t, "Approve for use in templates/documentation.", res.RecommendedAction)
	assert.NotEmpty(t, res.OrchestratorAction)

	assert.Equal(t, "3/3 dimensions addressed (comprehensive coverage)", res.Assessment.Coverage.Justification)
	assert.Equal(t, ValidatorVersion, res.Metadata.ValidatorVersion)
	assert.Equal(t, "4.8.1", res.Metadata.PromptVersion)
	assert.Equal(t, testNow, res.Metadata.ValidatedAt)
	assert.Equal(t, 3, res.Metadata.TotalDimensionsUsed)
	assert.True(t, res.Metadata.FreshnessApplicable)
	assert.Empty(t, res.Metadata.Error)
}

func TestScore_MissingFindings(t *testing.T) {
	tests := []struct {
		name     string
		findings []model.Finding
	}{
		{"absent", nil},
		{"empty", []model.Finding{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := allHighReport()
			r.KeyFindings = tt.findings

			res := Score(r, 3, WithNow(testNow))

			assert.Equal(t, ThresholdInsufficient, res.Threshold)
			assert.Zero(t, scoreOf(t, res.Assessment.Coverage))
			assert.Zero(t, scoreOf(t, res.Assessment.Evidence))
			assert.Zero(t, scoreOf(t, res.Assessment.Contradictions))
			assert.Nil(t, res.Assessment.Freshness.Score)
			assert.Zero(t, res.Assessment.Average)
			assert.Equal(t, "No findings in research output", res.Assessment.Coverage.Justification)
			assert.Equal(t, "No findings in research output", res.Metadata.Error)
			assert.Equal(t, "Fix validation error: No findings in research output", res.RecommendedAction)
		})
	}
}

func TestScore_MissingSources(t *testing.T) {
	r := allHighReport()
	r.Sources = map[model.ID]model.Source{}

	res := Score(r, 3, WithNow(testNow))

	assert.Equal(t, ThresholdInsufficient, res.Threshold)
	assert.Equal(t, "No sources in research output", res.Assessment.Evidence.Justification)
	assert.Nil(t, res.Assessment.Freshness.Score)
}

func TestScore_NilReport(t *testing.T) {
	res := Score(nil, 3, WithNow(testNow))
	assert.Equal(t, ThresholdInsufficient, res.Threshold)
	assert.Equal(t, model.UnknownPromptVersion, res.Metadata.PromptVersion)
}

func TestScore_FreshnessNotApplicable(t *testing.T) {
	r := allHighReport()
	// Stale sources would drag freshness to zero if it were scored.
	for id, src := range r.Sources {
		src.Date = "2001-01-01"
		r.Sources[id] = src
	}

	res := Score(r, 3, WithNow(testNow), WithFreshness(false))

	assert.Nil(t, res.Assessment.Freshness.Score)
	assert.Contains(t, res.Assessment.Freshness.Justification, "not applicable")
	assert.InDelta(t, 10.0, res.Assessment.Average, 0.001)
	assert.Equal(t, ThresholdProduction, res.Threshold)
	assert.False(t, res.Metadata.FreshnessApplicable)
}

func TestScore_NonPositiveDimensionsDegradesCoverageOnly(t *testing.T) {
	for _, dims := range []int{0, -4} {
		t.Run(fmt.Sprint(dims), func(t *testing.T) {
			res := Score(allHighReport(), dims, WithNow(testNow))

			assert.Zero(t, scoreOf(t, res.Assessment.Coverage))
			assert.Equal(t, "Error: total_dimensions must be > 0", res.Assessment.Coverage.Justification)
			assert.InDelta(t, 10.0, scoreOf(t, res.Assessment.Evidence), 0.001)
			assert.InDelta(t, 10.0, scoreOf(t, res.Assessment.Freshness), 0.001)
			assert.InDelta(t, 7.5, res.Assessment.Average, 0.001)
			assert.Equal(t, ThresholdMarginal, res.Threshold)
			assert.Empty(t, res.Metadata.Error)
			assert.Equal(t, dims, res.Metadata.TotalDimensionsUsed)
		})
	}
}

func TestScore_ThresholdUsesUnroundedAverage(t *testing.T) {
	// 7 distinct dimensions out of 18 gives coverage 3.89; with evidence and
	// contradictions at 10 the average is 7.96, displayed as 8.0.
	r := &model.Report{Sources: map[model.ID]model.Source{"1": {}}}
	for i := range 7 {
		r.KeyFindings = append(r.KeyFindings, model.Finding{
			ID:         model.ID(fmt.Sprint(i)),
			Text:       fmt.Sprintf("topic%d is covered", i),
			Confidence: model.ConfidenceHigh,
		})
	}

	res := Score(r, 18, WithNow(testNow), WithFreshness(false))

	assert.InDelta(t, 3.9, scoreOf(t, res.Assessment.Coverage), 0.001)
	assert.InDelta(t, 8.0, res.Assessment.Average, 0.001)
	assert.Equal(t, ThresholdMarginal, res.Threshold)
}

func TestScore_Idempotent(t *testing.T) {
	r := allHighReport()
	r.Meta.Disagreements = []model.Disagreement{{Claim: "x", FinalStance: "uncertain"}}

	first := Score(r, 4, WithNow(testNow))
	second := Score(r, 4, WithNow(testNow))

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated Score mismatch (-first +second):\n%s", diff)
	}
}

func TestScore_DoesNotMutateReport(t *testing.T) {
	r := allHighReport()
	before := allHighReport()

	Score(r, 3, WithNow(testNow))

	assert.Empty(t, cmp.Diff(before, r))
}

func TestScore_SubScoresStayInRange(t *testing.T) {
	r := allHighReport()
	r.KeyFindings[0].Confidence = model.ConfidenceLow
	r.KeyFindings[1].Confidence = "?"
	r.Sources["6"] = model.Source{Date: "yesterday"}
	for range 12 {
		r.Meta.Disagreements = append(r.Meta.Disagreements, model.Disagreement{FinalStance: model.StanceUncertain})
	}

	for _, dims := range []int{1, 2, 5, 50} {
		res := Score(r, dims, WithNow(testNow))
		for name, c := range map[string]Criterion{
			"coverage":       res.Assessment.Coverage,
			"evidence":       res.Assessment.Evidence,
			"freshness":      res.Assessment.Freshness,
			"contradictions": res.Assessment.Contradictions,
		} {
			s := scoreOf(t, c)
			assert.GreaterOrEqual(t, s, 0.0, "%s dims=%d", name, dims)
			assert.LessOrEqual(t, s, 10.0, "%s dims=%d", name, dims)
		}
	}
}

func TestScore_CustomDimensionStrategy(t *testing.T) {
	oneTopic := func(string) string { return "everything" }
	res := Score(allHighReport(), 2, WithNow(testNow), WithDimensionStrategy(oneTopic))

	assert.InDelta(t, 5.0, scoreOf(t, res.Assessment.Coverage), 0.001)
	assert.Equal(t, "1/2 dimensions addressed (significant gaps in coverage)", res.Assessment.Coverage.Justification)
}

func TestResult_JSONShape(t *testing.T) {
	res := Score(allHighReport(), 3, WithNow(testNow), WithFreshness(false))
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Production", doc["threshold"])
	assessment := doc["quality_assessment"].(map[string]any)
	freshness := assessment["freshness"].(map[string]any)
	assert.Contains(t, freshness, "score")
	assert.Nil(t, freshness["score"])
	assert.Contains(t, doc, "orchestrator_action")
	meta := doc["validation_metadata"].(map[string]any)
	assert.Equal(t, "1.0.0", meta["validator_version"])
	assert.NotContains(t, meta, "error")
}
