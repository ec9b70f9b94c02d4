// Package store adapts the SQLite persistence layer to the CLI's recorder
// interface. The indirection keeps the CLI free of database imports.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bkyoung/sectriage/internal/adapter/cli"
	"github.com/bkyoung/sectriage/internal/adapter/store/sqlite"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

// Bridge adapts *sqlite.Store to the cli.RunRecorder interface.
type Bridge struct {
	store    *sqlite.Store
	provider string
	model    string
}

// NewBridge creates a recorder over the given store, stamping each run with
// the provider and model that produced it.
func NewBridge(s *sqlite.Store, provider, model string) *Bridge {
	return &Bridge{store: s, provider: provider, model: model}
}

// Record persists a completed run and its verdicts.
func (b *Bridge) Record(ctx context.Context, summary cli.RunSummary, outcomes []analyze.Outcome) error {
	run := sqlite.Run{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Repository: summary.Repository,
		PRNumber:   summary.PRNumber,
		Provider:   b.provider,
		Model:      b.model,
		Total:      summary.Total,
		Kept:       summary.Kept,
		Excluded:   summary.Excluded,
		Failed:     summary.Failed,
	}
	if err := b.store.SaveRun(ctx, run, outcomes); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// Close releases the underlying store.
func (b *Bridge) Close() error {
	return b.store.Close()
}
