package sarif_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/sectriage/internal/adapter/cli"
	"github.com/bkyoung/sectriage/internal/adapter/llm"
	"github.com/bkyoung/sectriage/internal/adapter/output/sarif"
	"github.com/bkyoung/sectriage/internal/domain"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

type sarifDoc struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name string `json:"name"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID  string `json:"ruleId"`
			Level   string `json:"level"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region *struct {
						StartLine int `json:"startLine"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
			Properties   map[string]any `json:"properties"`
			Suppressions []struct {
				Kind          string `json:"kind"`
				Justification string `json:"justification"`
			} `json:"suppressions"`
		} `json:"results"`
		Properties map[string]any `json:"properties"`
	} `json:"runs"`
}

func writeDoc(t *testing.T, summary cli.RunSummary, outcomes []analyze.Outcome) sarifDoc {
	t.Helper()
	writer := sarif.NewWriter("anthropic", "claude-opus-4-20250514")

	var buf bytes.Buffer
	require.NoError(t, writer.Write(&buf, summary, outcomes))

	var doc sarifDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	return doc
}

func TestWriteSARIF(t *testing.T) {
	summary := cli.RunSummary{Repository: "acme/widgets", PRNumber: 12, Total: 2, Kept: 1, Excluded: 1}
	outcomes := []analyze.Outcome{
		{
			Finding: domain.Finding{"file": "a.go", "line": 10, "severity": "high", "description": "sql injection"},
			Result:  domain.AnalysisResult{ConfidenceScore: 8, KeepFinding: true, Justification: "reachable"},
		},
		{
			Finding: domain.Finding{"file": "b_test.go", "line": 5, "severity": "low", "description": "weak rand"},
			Result:  domain.AnalysisResult{ConfidenceScore: 9, KeepFinding: false, ExclusionReason: "test-only code"},
		},
	}

	doc := writeDoc(t, summary, outcomes)

	assert.Equal(t, "2.1.0", doc.Version)
	assert.Contains(t, doc.Schema, "sarif-schema-2.1.0")
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "sectriage", run.Tool.Driver.Name)
	assert.Equal(t, "anthropic", run.Properties["provider"])
	assert.Equal(t, "claude-opus-4-20250514", run.Properties["model"])
	assert.Equal(t, "acme/widgets", run.Properties["repository"])
	require.Len(t, run.Results, 2)

	kept := run.Results[0]
	assert.Equal(t, "finding-triage", kept.RuleID)
	assert.Equal(t, "error", kept.Level)
	assert.Equal(t, "sql injection", kept.Message.Text)
	require.Len(t, kept.Locations, 1)
	assert.Equal(t, "a.go", kept.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	require.NotNil(t, kept.Locations[0].PhysicalLocation.Region)
	assert.Equal(t, 10, kept.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, true, kept.Properties["kept"])
	assert.Empty(t, kept.Suppressions)

	excluded := run.Results[1]
	assert.Equal(t, "note", excluded.Level)
	assert.Equal(t, false, excluded.Properties["kept"])
	assert.Equal(t, "test-only code", excluded.Properties["exclusionReason"])
	require.Len(t, excluded.Suppressions, 1)
	assert.Equal(t, "external", excluded.Suppressions[0].Kind)
	assert.Equal(t, "test-only code", excluded.Suppressions[0].Justification)
}

func TestWriteSARIFFailedAnalysisStaysUnsuppressed(t *testing.T) {
	outcomes := []analyze.Outcome{
		{
			Finding: domain.Finding{"file": "c.go", "line": 1, "description": "open redirect"},
			Err:     llm.NewTimeoutError("anthropic", "timed out"),
		},
	}

	doc := writeDoc(t, cli.RunSummary{Total: 1, Failed: 1}, outcomes)

	require.Len(t, doc.Runs[0].Results, 1)
	result := doc.Runs[0].Results[0]
	assert.Equal(t, true, result.Properties["kept"])
	assert.Contains(t, result.Properties["analysisError"], "timed out")
	assert.Empty(t, result.Suppressions)
}

func TestWriteSARIFOmitsFabricatedLocations(t *testing.T) {
	outcomes := []analyze.Outcome{
		{
			Finding: domain.Finding{"description": "project-wide issue"},
			Result:  domain.AnalysisResult{ConfidenceScore: 5, KeepFinding: true},
		},
	}

	doc := writeDoc(t, cli.RunSummary{Total: 1, Kept: 1}, outcomes)

	require.Len(t, doc.Runs[0].Results, 1)
	assert.Empty(t, doc.Runs[0].Results[0].Locations)
}

func TestWriteSARIFDefaultMessageAndSeverity(t *testing.T) {
	outcomes := []analyze.Outcome{
		{
			Finding: domain.Finding{"file": "d.go"},
			Result:  domain.AnalysisResult{ConfidenceScore: 5, KeepFinding: true},
		},
	}

	doc := writeDoc(t, cli.RunSummary{Total: 1, Kept: 1}, outcomes)

	result := doc.Runs[0].Results[0]
	assert.Equal(t, "No description provided", result.Message.Text)
	assert.Equal(t, "warning", result.Level)
}
