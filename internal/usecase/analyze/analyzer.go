// Package analyze implements the per-finding true/false-positive judgment:
// prompt construction, the retry-wrapped model call, and strict verdict
// parsing.
package analyze

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
	"github.com/bkyoung/sectriage/internal/domain"
)

// defaultWorkers bounds parallel analyses when the caller doesn't choose.
const defaultWorkers = 4

// Caller is the retry-wrapped completion dependency. *llm.Caller satisfies
// it; tests substitute their own.
type Caller interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
	Client() llm.Client
}

// Analyzer judges scanner findings by delegating to the LLM client.
type Analyzer struct {
	caller    Caller
	maxTokens int
}

// NewAnalyzer constructs an Analyzer over a retry-wrapped client.
func NewAnalyzer(caller Caller) *Analyzer {
	return &Analyzer{
		caller:    caller,
		maxTokens: llm.DefaultMaxTokens,
	}
}

// AnalyzeFinding judges a single finding. prContext and customInstructions
// are optional; pass nil and "" to omit them. Call failures propagate with
// their classification intact; a transport success with an unusable payload
// is a malformed-response error carrying the raw text.
func (a *Analyzer) AnalyzeFinding(ctx context.Context, finding domain.Finding, prContext domain.PRContext, customInstructions string) (domain.AnalysisResult, error) {
	prompt := BuildPrompt(finding, prContext, customInstructions)

	resp, err := a.caller.Complete(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: SystemPrompt,
		MaxTokens:    a.maxTokens,
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	return ParseVerdict(a.caller.Client().Provider(), resp.Text)
}

// Outcome pairs a finding with its verdict or failure.
type Outcome struct {
	Finding domain.Finding
	Result  domain.AnalysisResult
	Err     error
}

// Kept reports whether the finding survived triage. Failed analyses keep the
// finding: an unjudged finding must not be silently dropped.
func (o Outcome) Kept() bool {
	return o.Err != nil || o.Result.KeepFinding
}

// AnalyzeAll judges a batch of findings with at most workers parallel calls
// (a default bound when workers <= 0), sharing one client across workers.
// Outcomes preserve input order and per-finding failures are isolated; the
// only error returned is context cancellation.
func (a *Analyzer) AnalyzeAll(ctx context.Context, findings []domain.Finding, prContext domain.PRContext, customInstructions string, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}

	outcomes := make([]Outcome, len(findings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, finding := range findings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := a.AnalyzeFinding(gctx, finding, prContext, customInstructions)
			outcomes[i] = Outcome{Finding: finding, Result: result, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
