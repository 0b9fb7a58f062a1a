// Package render formats evaluator results for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"

	"github.com/sells-group/research-gate/internal/gate"
	"github.com/sells-group/research-gate/internal/model"
	"github.com/sells-group/research-gate/internal/quality"
	"github.com/sells-group/research-gate/internal/traceability"
)

var (
	colorGood  = lipgloss.Color("34")
	colorWarn  = lipgloss.Color("214")
	colorBad   = lipgloss.Color("160")
	colorMuted = lipgloss.Color("242")
)

// Quality writes a quality result as a short report.
func Quality(w io.Writer, r *quality.Result, noColor bool) error {
	var b strings.Builder
	writeQuality(&b, r, noColor)
	return flush(w, &b)
}

// Traceability writes a traceability result as a short report.
func Traceability(w io.Writer, r *traceability.Result, noColor bool) error {
	var b strings.Builder
	writeTraceability(&b, r, noColor)
	return flush(w, &b)
}

// Verdict writes a gate verdict followed by both evaluator sections.
func Verdict(w io.Writer, v *gate.Verdict, noColor bool) error {
	var b strings.Builder
	b.WriteString(stylize("Decision: "+strings.ToUpper(string(v.Decision)), noColor, decisionColor(v.Decision)))
	b.WriteString("\n")
	for _, reason := range v.Reasons {
		b.WriteString("  - " + reason + "\n")
	}
	b.WriteString("\n")
	writeQuality(&b, v.Quality, noColor)
	b.WriteString("\n")
	writeTraceability(&b, v.Traceability, noColor)
	return flush(w, &b)
}

func writeQuality(b *strings.Builder, r *quality.Result, noColor bool) {
	header := fmt.Sprintf("Quality: %s (average %.1f/10)", r.Threshold, r.Assessment.Average)
	b.WriteString(stylize(header, noColor, thresholdColor(r.Threshold)))
	b.WriteString("\n")

	rows := []struct {
		name string
		c    quality.Criterion
	}{
		{"Coverage", r.Assessment.Coverage},
		{"Evidence", r.Assessment.Evidence},
		{"Freshness", r.Assessment.Freshness},
		{"Contradictions", r.Assessment.Contradictions},
	}
	for _, row := range rows {
		score := "  n/a"
		if row.c.Score != nil {
			score = fmt.Sprintf("%5.1f", *row.c.Score)
		}
		fmt.Fprintf(b, "  %-15s %s  %s\n", row.name, score, stylize(row.c.Justification, noColor, colorMuted))
	}
	fmt.Fprintf(b, "  Action: %s\n", r.RecommendedAction)
	fmt.Fprintf(b, "  Orchestrator: %s\n", r.OrchestratorAction)
	b.WriteString(stylize(fmt.Sprintf("  validator %s, prompt %s, %d dimensions",
		r.Metadata.ValidatorVersion, r.Metadata.PromptVersion, r.Metadata.TotalDimensionsUsed), noColor, colorMuted))
	b.WriteString("\n")
}

func writeTraceability(b *strings.Builder, r *traceability.Result, noColor bool) {
	b.WriteString(stylize("Traceability: "+string(r.Status), noColor, statusColor(r.Status)))
	b.WriteString("\n")
	fmt.Fprintf(b, "  Notes: %s\n", r.Notes)

	tr := r.Traceability
	if tr.AnswerClaim != "" {
		fmt.Fprintf(b, "  Claim:    %s\n", tr.AnswerClaim)
		fmt.Fprintf(b, "  Headline: %s (%s)\n", tr.ExpectedAnswer, tr.ClaimMatch)
	}
	fmt.Fprintf(b, "  Aggregate confidence: %s (meets policy: %v)\n",
		tr.Support.AggregateConfidence, tr.Support.MeetsPolicy)
	if len(tr.Support.SourceIDs) > 0 {
		fmt.Fprintf(b, "  Sources: %s\n", strings.Join(model.IDStrings(tr.Support.SourceIDs), ", "))
	}
	for _, f := range tr.Breakdown {
		line := fmt.Sprintf("  [%s] %s (%d sources) %s", f.FindingID, f.Confidence, f.SourceCount, f.FindingText)
		b.WriteString(stylize(line, noColor, colorMuted))
		b.WriteString("\n")
	}
}

func flush(w io.Writer, b *strings.Builder) error {
	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "render: write output")
	}
	return nil
}

func thresholdColor(t quality.Threshold) lipgloss.Color {
	switch t {
	case quality.ThresholdProduction:
		return colorGood
	case quality.ThresholdMarginal:
		return colorWarn
	default:
		return colorBad
	}
}

func statusColor(s traceability.Status) lipgloss.Color {
	switch s {
	case traceability.StatusVerified:
		return colorGood
	case traceability.StatusSpeculative:
		return colorWarn
	default:
		return colorBad
	}
}

func decisionColor(d gate.Decision) lipgloss.Color {
	switch d {
	case gate.DecisionApprove:
		return colorGood
	case gate.DecisionReview:
		return colorWarn
	default:
		return colorBad
	}
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
