// Package anthropic adapts the direct Anthropic API behind the shared
// llm.Client contract.
package anthropic

import (
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
)

const providerName = "anthropic"

// Options configures the Anthropic adapter.
type Options struct {
	APIKey  string
	Model   string        // canonical model id
	Timeout time.Duration // per-call transport timeout
	BaseURL string        // override for testing
}

// Client is the Anthropic-direct provider adapter.
type Client struct {
	*llm.Transport
}

// Compile-time check that Client satisfies the llm.Client interface.
var _ llm.Client = (*Client)(nil)

// New constructs the adapter. It fails fast, before any network call, when
// the API key is absent.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, llm.NewConfigurationError(providerName, "anthropic API key is required (ANTHROPIC_API_KEY)")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		// Retries are owned by llm.Caller, not the SDK.
		option.WithMaxRetries(0),
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(opts.Timeout))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Client{
		Transport: &llm.Transport{
			SDK:          sdk.NewClient(clientOpts...),
			ProviderName: providerName,
			Model:        TranslateModel(opts.Model),
		},
	}, nil
}

// TranslateModel is the identity translation: canonical ids are already in
// Anthropic's native naming scheme.
func TranslateModel(model string) string {
	return model
}
