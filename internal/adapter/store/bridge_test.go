package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/sectriage/internal/adapter/cli"
	storeadapter "github.com/bkyoung/sectriage/internal/adapter/store"
	"github.com/bkyoung/sectriage/internal/adapter/store/sqlite"
	"github.com/bkyoung/sectriage/internal/domain"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

func TestBridgeRecord(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)

	bridge := storeadapter.NewBridge(s, "anthropic", "claude-opus-4-20250514")
	defer bridge.Close()

	summary := cli.RunSummary{
		Repository: "acme/widgets",
		PRNumber:   42,
		Total:      2,
		Kept:       1,
		Excluded:   1,
	}
	outcomes := []analyze.Outcome{
		{
			Finding: domain.Finding{"file": "a.go", "line": 1},
			Result:  domain.AnalysisResult{ConfidenceScore: 7, KeepFinding: true},
		},
		{
			Finding: domain.Finding{"file": "b.go", "line": 2},
			Result:  domain.AnalysisResult{ConfidenceScore: 9, KeepFinding: false, ExclusionReason: "dead code"},
		},
	}

	require.NoError(t, bridge.Record(context.Background(), summary, outcomes))

	runs, err := s.RecentRuns(context.Background(), "acme/widgets", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "anthropic", run.Provider)
	assert.Equal(t, "claude-opus-4-20250514", run.Model)
	assert.Equal(t, 42, run.PRNumber)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Kept)
	assert.Equal(t, 1, run.Excluded)
}

func TestBridgeRecordAssignsUniqueRunIDs(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)

	bridge := storeadapter.NewBridge(s, "anthropic", "claude-opus-4-20250514")
	defer bridge.Close()

	summary := cli.RunSummary{Repository: "acme/widgets"}
	require.NoError(t, bridge.Record(context.Background(), summary, nil))
	require.NoError(t, bridge.Record(context.Background(), summary, nil))

	runs, err := s.RecentRuns(context.Background(), "acme/widgets", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.NotEqual(t, runs[0].ID, runs[1].ID)
}
