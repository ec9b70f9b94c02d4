package vertex_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
	"github.com/bkyoung/sectriage/internal/adapter/llm/vertex"
)

func TestNewRequiresProjectID(t *testing.T) {
	client, err := vertex.New(context.Background(), vertex.Options{
		Region: "us-central1",
		Model:  "claude-opus-4-20250514",
	})

	assert.Nil(t, client)
	require.Error(t, err)

	var classified *llm.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, llm.ErrKindConfiguration, classified.Kind)
	assert.Contains(t, err.Error(), "GOOGLE_CLOUD_PROJECT")
}

func TestNewRequiresRegion(t *testing.T) {
	client, err := vertex.New(context.Background(), vertex.Options{
		ProjectID: "my-project",
		Model:     "claude-opus-4-20250514",
	})

	assert.Nil(t, client)
	require.Error(t, err)

	var classified *llm.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, llm.ErrKindConfiguration, classified.Kind)
	assert.Contains(t, err.Error(), "GOOGLE_CLOUD_REGION")
}

func TestTranslateModel(t *testing.T) {
	tests := []struct {
		name      string
		canonical string
		want      string
	}{
		{
			name:      "opus with date",
			canonical: "claude-opus-4-20250514",
			want:      "claude-opus-4@20250514",
		},
		{
			name:      "sonnet with v2 marker",
			canonical: "claude-3-5-sonnet-v2-20241022",
			want:      "claude-3-5-sonnet@20241022",
		},
		{
			name:      "haiku",
			canonical: "claude-3-5-haiku-20241022",
			want:      "claude-3-5-haiku@20241022",
		},
		{
			name:      "non-canonical id passes through",
			canonical: "claude-instant",
			want:      "claude-instant",
		},
		{
			name:      "non-claude id passes through",
			canonical: "gpt-4o",
			want:      "gpt-4o",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vertex.TranslateModel(tt.canonical)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, countRune(got, '@'), 1, "translated id must contain at most one @")
		})
	}
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}
