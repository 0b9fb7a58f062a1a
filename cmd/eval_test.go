package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/research-gate/internal/config"
)

func TestLoadReport_File(t *testing.T) {
	path := writeReport(t, "report.json", approvedReport)

	r, err := loadReport(path, strings.NewReader(""), "json")
	require.NoError(t, err)
	require.Len(t, r.KeyFindings, 1)
	assert.Equal(t, "v3", r.PromptVersion())
}

func TestLoadReport_Stdin(t *testing.T) {
	r, err := loadReport("-", strings.NewReader(approvedReport), "json")
	require.NoError(t, err)
	assert.Len(t, r.Sources, 1)

	yamlDoc := "executive_summary: [\"1. x\"]\nkey_findings: []\n"
	r, err = loadReport("-", strings.NewReader(yamlDoc), "YAML")
	require.NoError(t, err)
	assert.NotNil(t, r.KeyFindings)
	assert.Empty(t, r.KeyFindings)
}

func TestLoadReport_Errors(t *testing.T) {
	_, err := loadReport("-", strings.NewReader("{"), "json")
	assert.Error(t, err)

	_, err = loadReport("/nonexistent/report.json", strings.NewReader(""), "json")
	assert.Error(t, err)
}

func TestEvalFlags_Validate(t *testing.T) {
	tests := []struct {
		name    string
		flags   evalFlags
		wantErr bool
	}{
		{"json", evalFlags{format: "json", stdinFormat: "json"}, false},
		{"text yaml", evalFlags{format: "text", stdinFormat: "yaml"}, false},
		{"bad format", evalFlags{format: "xml", stdinFormat: "json"}, true},
		{"bad stdin", evalFlags{format: "json", stdinFormat: "toml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEvalFlags_Resolve(t *testing.T) {
	cfg = &config.Config{Evaluation: config.EvaluationConfig{TotalDimensions: 12, FreshnessApplicable: false}}
	t.Cleanup(func() { cfg = nil })

	var f evalFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)

	s := f.resolve(cmd)
	assert.Equal(t, 12, s.totalDimensions)
	assert.False(t, s.freshness)

	require.NoError(t, cmd.Flags().Set("dimensions", "0"))
	s = f.resolve(cmd)
	assert.Equal(t, 0, s.totalDimensions)
}

func TestEvalFlags_ResolveNoFreshness(t *testing.T) {
	cfg = &config.Config{Evaluation: config.EvaluationConfig{TotalDimensions: 10, FreshnessApplicable: true}}
	t.Cleanup(func() { cfg = nil })

	var f evalFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	require.NoError(t, cmd.Flags().Set("no-freshness", "true"))

	s := f.resolve(cmd)
	assert.Equal(t, 10, s.totalDimensions)
	assert.False(t, s.freshness)
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, formatJSON, map[string]int{"a": 1}, nil))

	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got["a"])

	buf.Reset()
	require.NoError(t, writeOutput(&buf, formatText, nil, func(w io.Writer) error {
		_, err := io.WriteString(w, "plain")
		return err
	}))
	assert.Equal(t, "plain", buf.String())
}
