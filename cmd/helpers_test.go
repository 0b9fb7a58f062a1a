package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const approvedReport = `{
  "executive_summary": ["1. Alpha beta gamma [1]"],
  "key_findings": [
    {"id": 1, "text": "Alpha beta gamma holds", "confidence": "H", "source_ids": ["1"]}
  ],
  "sources": {"1": {"date": "2025-01-15", "publisher": "Acme", "title": "T", "url": "https://example.com"}},
  "meta": {
    "disagreements": [],
    "traceability_data": {"answer_claim": "Alpha beta gamma", "supporting_finding_ids": [1]},
    "run_metadata": {"prompt_version": "v3"}
  }
}`

const speculativeReport = `{
  "executive_summary": ["1. Alpha beta gamma"],
  "key_findings": [
    {"id": 1, "text": "Alpha", "confidence": "L", "source_ids": ["1"]}
  ],
  "sources": {"1": {"date": "2025-01-15"}},
  "meta": {
    "traceability_data": {"answer_claim": "Alpha beta gamma", "supporting_finding_ids": [1]}
  }
}`

// writeReport writes content into a temp file and returns its path.
func writeReport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
