package analyze_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
	"github.com/bkyoung/sectriage/internal/domain"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

func newTestCaller(responses ...llm.MockResponse) (*llm.Caller, *llm.MockClient) {
	mock := llm.NewMockClient(responses...)
	policy := llm.RetryPolicy{
		MaxRetries:    1,
		RateLimitBase: time.Millisecond,
		TransientBase: time.Millisecond,
		MaxBackoff:    time.Millisecond,
	}
	return llm.NewCaller(mock, policy, nil), mock
}

func TestAnalyzeFinding(t *testing.T) {
	caller, mock := newTestCaller(llm.MockResponse{
		Text: `{"confidence_score": 8, "keep_finding": true, "exclusion_reason": "", "justification": "reachable from an exported handler"}`,
	})
	analyzer := analyze.NewAnalyzer(caller)

	result, err := analyzer.AnalyzeFinding(context.Background(), testFinding(), nil, "")
	require.NoError(t, err)

	assert.True(t, result.KeepFinding)
	assert.Equal(t, 8.0, result.ConfidenceScore)
	assert.Equal(t, "reachable from an exported handler", result.Justification)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, analyze.SystemPrompt, calls[0].SystemPrompt)
	assert.Contains(t, calls[0].Prompt, "GO-2024-1234")
	assert.Equal(t, llm.DefaultMaxTokens, calls[0].MaxTokens)
}

func TestAnalyzeFindingPropagatesCallErrors(t *testing.T) {
	caller, _ := newTestCaller(llm.MockResponse{
		Err: llm.NewAuthenticationError("mock", "bad key"),
	})
	analyzer := analyze.NewAnalyzer(caller)

	_, err := analyzer.AnalyzeFinding(context.Background(), testFinding(), nil, "")
	require.Error(t, err)

	var classified *llm.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, llm.ErrKindAuthentication, classified.Kind)
}

func TestAnalyzeFindingRejectsUnusablePayload(t *testing.T) {
	caller, _ := newTestCaller(llm.MockResponse{Text: "not json at all"})
	analyzer := analyze.NewAnalyzer(caller)

	_, err := analyzer.AnalyzeFinding(context.Background(), testFinding(), nil, "")
	require.Error(t, err)

	var classified *llm.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, llm.ErrKindMalformedResponse, classified.Kind)
}

func TestAnalyzeAllPreservesOrder(t *testing.T) {
	// Every finding gets the same verdict; order is asserted via the echoed
	// finding, not the verdict.
	caller, mock := newTestCaller(llm.MockResponse{
		Text: `{"confidence_score": 5, "keep_finding": true}`,
	})
	analyzer := analyze.NewAnalyzer(caller)

	findings := make([]domain.Finding, 10)
	for i := range findings {
		findings[i] = domain.Finding{"identifier": fmt.Sprintf("F-%03d", i)}
	}

	outcomes, err := analyzer.AnalyzeAll(context.Background(), findings, nil, "", 3)
	require.NoError(t, err)
	require.Len(t, outcomes, 10)

	for i, outcome := range outcomes {
		assert.Equal(t, fmt.Sprintf("F-%03d", i), outcome.Finding["identifier"])
		assert.NoError(t, outcome.Err)
	}
	assert.Len(t, mock.Calls(), 10)
}

func TestAnalyzeAllIsolatesFailures(t *testing.T) {
	// First call fails fatally, the rest succeed. The batch must complete and
	// only the failed finding carries an error.
	caller, _ := newTestCaller(
		llm.MockResponse{Err: llm.NewAuthenticationError("mock", "bad key")},
		llm.MockResponse{Text: `{"confidence_score": 5, "keep_finding": false, "exclusion_reason": "dead code"}`},
	)
	analyzer := analyze.NewAnalyzer(caller)

	findings := []domain.Finding{
		{"identifier": "F-000"},
		{"identifier": "F-001"},
		{"identifier": "F-002"},
	}

	// Single worker keeps the mock's response sequence aligned with input order.
	outcomes, err := analyzer.AnalyzeAll(context.Background(), findings, nil, "", 1)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Error(t, outcomes[0].Err)
	assert.NoError(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)
}

func TestAnalyzeAllCancelledContext(t *testing.T) {
	caller, _ := newTestCaller(llm.MockResponse{
		Text: `{"confidence_score": 5, "keep_finding": true}`,
	})
	analyzer := analyze.NewAnalyzer(caller)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzer.AnalyzeAll(ctx, []domain.Finding{{"identifier": "F-000"}}, nil, "", 2)
	require.Error(t, err)
}

func TestOutcomeKept(t *testing.T) {
	tests := []struct {
		name    string
		outcome analyze.Outcome
		want    bool
	}{
		{
			name:    "verdict keeps",
			outcome: analyze.Outcome{Result: domain.AnalysisResult{KeepFinding: true}},
			want:    true,
		},
		{
			name:    "verdict excludes",
			outcome: analyze.Outcome{Result: domain.AnalysisResult{KeepFinding: false}},
			want:    false,
		},
		{
			name:    "failed analysis keeps the finding",
			outcome: analyze.Outcome{Err: llm.NewTimeoutError("mock", "timed out")},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Kept())
		})
	}
}
