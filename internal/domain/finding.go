package domain

import (
	"encoding/json"
	"fmt"
)

// Finding is a single security-scanner finding. The scanner owns the schema;
// findings are carried as an opaque mapping and passed through to the
// analysis prompt unmodified. Typed accessors cover the fields every scanner
// in practice emits.
type Finding map[string]any

// File returns the file path the finding points at, or "" if absent.
func (f Finding) File() string {
	return stringField(f, "file")
}

// Line returns the line number of the finding, or 0 if absent.
func (f Finding) Line() int {
	switch v := f["line"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

// Severity returns the scanner-reported severity, or "" if absent.
func (f Finding) Severity() string {
	return stringField(f, "severity")
}

// Description returns the finding description, or "" if absent.
func (f Finding) Description() string {
	return stringField(f, "description")
}

// Identifier returns a short human-readable handle for logs and reports,
// e.g. "internal/auth/token.go:42".
func (f Finding) Identifier() string {
	return fmt.Sprintf("%s:%d", f.File(), f.Line())
}

// PRContext is optional pull-request metadata (repository, PR number, title
// and so on) supplied by the caller. Like Finding it is an opaque mapping;
// it only ever adds context to the prompt.
type PRContext map[string]any

// AnalysisResult is the model's verdict on a single finding. A result is
// produced fresh per analysis and never mutated afterwards.
type AnalysisResult struct {
	// ConfidenceScore is the model's self-reported confidence in [1,10].
	// Advisory only; out-of-range values are clamped during parsing.
	ConfidenceScore float64 `json:"confidence_score"`

	// KeepFinding reports whether the finding is judged a true positive.
	KeepFinding bool `json:"keep_finding"`

	// ExclusionReason explains why the finding was excluded. Empty when
	// the finding is kept.
	ExclusionReason string `json:"exclusion_reason"`

	// Justification is the model's explanation of the decision.
	Justification string `json:"justification"`
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
