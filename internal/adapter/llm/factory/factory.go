// Package factory constructs the provider adapter matching an LLM
// configuration and wires it behind the shared retry layer.
package factory

import (
	"context"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
	"github.com/bkyoung/sectriage/internal/adapter/llm/anthropic"
	"github.com/bkyoung/sectriage/internal/adapter/llm/bedrock"
	"github.com/bkyoung/sectriage/internal/adapter/llm/vertex"
	"github.com/bkyoung/sectriage/internal/config"
)

// CreateClient validates cfg and constructs the matching provider adapter.
// Validation happens before any construction, so a missing credential
// surfaces as a configuration error naming the exact field. An unrecognized
// provider is an error; there is no fallback provider.
func CreateClient(ctx context.Context, cfg config.LLM) (llm.Client, error) {
	if !cfg.Provider.IsValid() {
		return nil, llm.NewUnsupportedProviderError(string(cfg.Provider))
	}
	if err := cfg.Validate(); err != nil {
		return nil, llm.NewConfigurationError(string(cfg.Provider), err.Error())
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.New(anthropic.Options{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout(),
		})
	case config.ProviderVertex:
		return vertex.New(ctx, vertex.Options{
			ProjectID: cfg.ProjectID,
			Region:    cfg.Region,
			Model:     cfg.Model,
			Timeout:   cfg.Timeout(),
		})
	case config.ProviderBedrock:
		return bedrock.New(ctx, bedrock.Options{
			Region:  cfg.AWSRegion,
			Model:   cfg.Model,
			Timeout: cfg.Timeout(),
		})
	default:
		return nil, llm.NewUnsupportedProviderError(string(cfg.Provider))
	}
}

// NewCaller wraps the adapter for cfg with the shared retry policy.
func NewCaller(ctx context.Context, cfg config.LLM, logger llm.Logger) (*llm.Caller, error) {
	client, err := CreateClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy := llm.DefaultRetryPolicy()
	if cfg.MaxRetries >= 0 {
		policy.MaxRetries = cfg.MaxRetries
	}

	return llm.NewCaller(client, policy, logger), nil
}

// FromEnvironment reads the fixed environment variable set, applies defaults,
// and constructs the retry-wrapped client.
func FromEnvironment(ctx context.Context, logger llm.Logger) (*llm.Caller, error) {
	cfg, err := config.FromEnvironment()
	if err != nil {
		return nil, llm.NewConfigurationError("factory", err.Error())
	}
	return NewCaller(ctx, cfg, logger)
}
