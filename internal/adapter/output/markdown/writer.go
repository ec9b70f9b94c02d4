// Package markdown renders a human-readable triage report, for PR comments
// and terminal review.
package markdown

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/sectriage/internal/adapter/cli"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

// Writer implements the cli.ReportWriter interface for Markdown output.
type Writer struct {
	provider string
	model    string
}

// NewWriter creates a Markdown writer stamped with the provider and model
// that produced the verdicts.
func NewWriter(provider, model string) *Writer {
	return &Writer{provider: provider, model: model}
}

// Write renders the triage report.
func (w *Writer) Write(out io.Writer, summary cli.RunSummary, outcomes []analyze.Outcome) error {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString("# Finding Triage Report\n\n")
	builder.WriteString(fmt.Sprintf("- Provider: %s (%s)\n", w.provider, w.model))
	if summary.Repository != "" {
		builder.WriteString(fmt.Sprintf("- Repository: %s\n", summary.Repository))
	}
	if summary.PRNumber > 0 {
		builder.WriteString(fmt.Sprintf("- Pull request: #%d\n", summary.PRNumber))
	}
	builder.WriteString(fmt.Sprintf("- Findings: %d total, %d kept, %d excluded, %d failed\n\n",
		summary.Total, summary.Kept, summary.Excluded, summary.Failed))

	if len(outcomes) == 0 {
		builder.WriteString("No findings analyzed.\n")
		_, err := io.WriteString(out, builder.String())
		return err
	}

	writeSection(&builder, caser, "## Kept Findings\n\n", outcomes, func(o analyze.Outcome) bool {
		return o.Err == nil && o.Result.KeepFinding
	})
	writeSection(&builder, caser, "## Excluded Findings\n\n", outcomes, func(o analyze.Outcome) bool {
		return o.Err == nil && !o.Result.KeepFinding
	})
	writeSection(&builder, caser, "## Failed Analyses\n\n", outcomes, func(o analyze.Outcome) bool {
		return o.Err != nil
	})

	_, err := io.WriteString(out, builder.String())
	return err
}

func writeSection(builder *strings.Builder, caser cases.Caser, heading string, outcomes []analyze.Outcome, include func(analyze.Outcome) bool) {
	var matched []analyze.Outcome
	for _, o := range outcomes {
		if include(o) {
			matched = append(matched, o)
		}
	}
	if len(matched) == 0 {
		return
	}

	builder.WriteString(heading)
	for _, o := range matched {
		title := o.Finding.Description()
		if title == "" {
			title = o.Finding.Identifier()
		}
		if severity := o.Finding.Severity(); severity != "" {
			builder.WriteString(fmt.Sprintf("### %s (%s)\n", title, caser.String(severity)))
		} else {
			builder.WriteString(fmt.Sprintf("### %s\n", title))
		}
		if o.Finding.File() != "" {
			builder.WriteString(fmt.Sprintf("- Location: %s\n", o.Finding.Identifier()))
		}

		switch {
		case o.Err != nil:
			builder.WriteString(fmt.Sprintf("- Error: %s\n", o.Err.Error()))
			builder.WriteString("- Kept: finding retained because analysis failed\n")
		default:
			builder.WriteString(fmt.Sprintf("- Confidence: %.0f/10\n", o.Result.ConfidenceScore))
			if o.Result.ExclusionReason != "" {
				builder.WriteString(fmt.Sprintf("- Exclusion reason: %s\n", o.Result.ExclusionReason))
			}
			if o.Result.Justification != "" {
				builder.WriteString(fmt.Sprintf("- Justification: %s\n", o.Result.Justification))
			}
		}
		builder.WriteString("\n")
	}
}
