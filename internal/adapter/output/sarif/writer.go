// Package sarif renders triage results as a SARIF 2.1.0 log, the interchange
// format most scanner pipelines and code hosts already ingest. Only kept
// findings become results; excluded findings appear as suppressed results so
// the filtering stays auditable.
package sarif

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bkyoung/sectriage/internal/adapter/cli"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

const schemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// Writer implements the cli.ReportWriter interface for SARIF output.
type Writer struct {
	provider string
	model    string
}

// NewWriter creates a SARIF writer stamped with the provider and model that
// produced the verdicts.
func NewWriter(provider, model string) *Writer {
	return &Writer{provider: provider, model: model}
}

// Write renders the outcomes as one SARIF run.
func (w *Writer) Write(out io.Writer, summary cli.RunSummary, outcomes []analyze.Outcome) error {
	results := make([]map[string]interface{}, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, w.convertOutcome(o))
	}

	doc := map[string]interface{}{
		"version": "2.1.0",
		"$schema": schemaURI,
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":    "sectriage",
						"version": "1.0.0",
						"rules": []map[string]interface{}{
							{
								"id":               "finding-triage",
								"name":             "FindingTriage",
								"shortDescription": map[string]interface{}{"text": "Security-scanner finding judged by LLM triage"},
							},
						},
					},
				},
				"results": results,
				"properties": map[string]interface{}{
					"provider":   w.provider,
					"model":      w.model,
					"repository": summary.Repository,
					"prNumber":   summary.PRNumber,
					"total":      summary.Total,
					"kept":       summary.Kept,
					"excluded":   summary.Excluded,
					"failed":     summary.Failed,
				},
			},
		},
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode sarif: %w", err)
	}
	return nil
}

func (w *Writer) convertOutcome(o analyze.Outcome) map[string]interface{} {
	// SARIF requires non-empty message text.
	messageText := o.Finding.Description()
	if messageText == "" {
		messageText = "No description provided"
	}

	result := map[string]interface{}{
		"ruleId": "finding-triage",
		"level":  convertSeverity(o.Finding.Severity()),
		"message": map[string]interface{}{
			"text": messageText,
		},
	}

	// Omit locations entirely for findings with no file info rather than
	// fabricating one.
	if o.Finding.File() != "" {
		physicalLocation := map[string]interface{}{
			"artifactLocation": map[string]interface{}{
				"uri": o.Finding.File(),
			},
		}
		if o.Finding.Line() >= 1 {
			physicalLocation["region"] = map[string]interface{}{
				"startLine": o.Finding.Line(),
			}
		}
		result["locations"] = []map[string]interface{}{
			{"physicalLocation": physicalLocation},
		}
	}

	properties := map[string]interface{}{
		"kept": o.Kept(),
	}
	switch {
	case o.Err != nil:
		properties["analysisError"] = o.Err.Error()
	default:
		properties["confidence"] = o.Result.ConfidenceScore
		properties["justification"] = o.Result.Justification
		if o.Result.ExclusionReason != "" {
			properties["exclusionReason"] = o.Result.ExclusionReason
		}
	}
	result["properties"] = properties

	// Excluded findings stay in the log but marked suppressed, so downstream
	// viewers hide them without losing the audit trail.
	if !o.Kept() {
		result["suppressions"] = []map[string]interface{}{
			{
				"kind":          "external",
				"justification": o.Result.ExclusionReason,
			},
		}
	}

	return result
}

// convertSeverity maps scanner severities to SARIF levels.
func convertSeverity(severity string) string {
	switch severity {
	case "critical", "high":
		return "error"
	case "medium":
		return "warning"
	case "low":
		return "note"
	default:
		return "warning"
	}
}
