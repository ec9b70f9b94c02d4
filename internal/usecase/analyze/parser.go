package analyze

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
	"github.com/bkyoung/sectriage/internal/domain"
)

const (
	minConfidence = 1
	maxConfidence = 10
)

// jsonBlockPattern matches a markdown code fence (with optional json language
// tag). Models frequently wrap the verdict in a fence despite instructions;
// greedy matching to the last closing fence tolerates nested code examples
// inside string values.
var jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")

// extractJSON strips a markdown fence if present, otherwise returns the
// trimmed text (which may be raw JSON).
func extractJSON(text string) string {
	if matches := jsonBlockPattern.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// ParseVerdict parses model output into an AnalysisResult. Parsing is strict
// about the contract but lenient about representation: keep_finding is
// mandatory (bool or bool-like string), confidence_score is clamped into
// [1,10], and the two free-text fields default to empty strings. Any failure
// returns a malformed-response error with the raw text attached (truncated)
// for diagnosis.
func ParseVerdict(provider, text string) (domain.AnalysisResult, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(extractJSON(text)), &raw); err != nil {
		return domain.AnalysisResult{}, llm.NewMalformedResponseError(provider,
			fmt.Sprintf("response is not valid JSON: %v; raw response: %s", err, llm.TruncateForLogging(text)))
	}

	keep, ok := coerceBool(raw["keep_finding"])
	if !ok {
		return domain.AnalysisResult{}, llm.NewMalformedResponseError(provider,
			fmt.Sprintf("response is missing a usable keep_finding; raw response: %s", llm.TruncateForLogging(text)))
	}

	confidence, err := coerceConfidence(raw["confidence_score"])
	if err != nil {
		return domain.AnalysisResult{}, llm.NewMalformedResponseError(provider,
			fmt.Sprintf("%v; raw response: %s", err, llm.TruncateForLogging(text)))
	}

	return domain.AnalysisResult{
		ConfidenceScore: confidence,
		KeepFinding:     keep,
		ExclusionReason: coerceString(raw["exclusion_reason"]),
		Justification:   coerceString(raw["justification"]),
	}, nil
}

// coerceBool accepts a JSON bool or a bool-like string.
func coerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(b)))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// coerceConfidence accepts a JSON number or numeric string and clamps it into
// [1,10]. The score is advisory, so out-of-range values clamp rather than
// fail; an absent score clamps up from zero. A present but non-numeric value
// is a contract violation.
func coerceConfidence(v any) (float64, error) {
	var score float64
	switch n := v.(type) {
	case nil:
		score = 0
	case float64:
		score = n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("confidence_score %q is not a number", n.String())
		}
		score = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("confidence_score %q is not a number", n)
		}
		score = f
	default:
		return 0, fmt.Errorf("confidence_score has unexpected type %T", v)
	}

	if score < minConfidence {
		return minConfidence, nil
	}
	if score > maxConfidence {
		return maxConfidence, nil
	}
	return score, nil
}

func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
