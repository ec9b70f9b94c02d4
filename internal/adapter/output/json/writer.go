// Package json renders the triage report consumed by CI pipelines and
// downstream tooling.
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bkyoung/sectriage/internal/adapter/cli"
	"github.com/bkyoung/sectriage/internal/domain"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

// Report is the serialized shape of one triage run.
type Report struct {
	Repository string          `json:"repository,omitempty"`
	PRNumber   int             `json:"pr_number,omitempty"`
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
	Total      int             `json:"total"`
	Kept       int             `json:"kept"`
	Excluded   int             `json:"excluded"`
	Failed     int             `json:"failed"`
	Results    []ReportedVerdict `json:"results"`
}

// ReportedVerdict pairs one finding with its verdict. Analysis failures keep
// the finding and carry the error instead of a verdict.
type ReportedVerdict struct {
	Finding domain.Finding         `json:"finding"`
	Result  *domain.AnalysisResult `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Kept    bool                   `json:"kept"`
}

// Writer implements the cli.ReportWriter interface.
type Writer struct {
	provider string
	model    string
}

// NewWriter creates a report writer stamped with the provider and model that
// produced the verdicts.
func NewWriter(provider, model string) *Writer {
	return &Writer{provider: provider, model: model}
}

// Write renders the report as indented JSON.
func (w *Writer) Write(out io.Writer, summary cli.RunSummary, outcomes []analyze.Outcome) error {
	report := Report{
		Repository: summary.Repository,
		PRNumber:   summary.PRNumber,
		Provider:   w.provider,
		Model:      w.model,
		Total:      summary.Total,
		Kept:       summary.Kept,
		Excluded:   summary.Excluded,
		Failed:     summary.Failed,
		Results:    make([]ReportedVerdict, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		verdict := ReportedVerdict{
			Finding: o.Finding,
			Kept:    o.Kept(),
		}
		if o.Err != nil {
			verdict.Error = o.Err.Error()
		} else {
			result := o.Result
			verdict.Result = &result
		}
		report.Results = append(report.Results, verdict)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
