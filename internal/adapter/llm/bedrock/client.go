// Package bedrock adapts Claude on AWS Bedrock behind the shared llm.Client
// contract.
package bedrock

import (
	"context"
	"regexp"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	sdkbedrock "github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
)

const providerName = "bedrock"

// Options configures the Bedrock adapter.
type Options struct {
	Region  string
	Model   string        // canonical or Bedrock-native model id
	Timeout time.Duration // per-call transport timeout
	BaseURL string        // override for testing
}

// Client is the Bedrock-hosted provider adapter.
type Client struct {
	*llm.Transport
}

// Compile-time check that Client satisfies the llm.Client interface.
var _ llm.Client = (*Client)(nil)

// New constructs the adapter. The AWS credential chain (env, shared config,
// instance role) is resolved by the SDK; only the region is required here.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.Region == "" {
		return nil, llm.NewConfigurationError(providerName, "AWS region is required (AWS_REGION)")
	}

	clientOpts := []option.RequestOption{
		sdkbedrock.WithLoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region)),
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

var (
	// canonicalModelPattern matches claude-<rest>-<YYYYMMDD>, with an
	// optional -v2 marker before the date.
	canonicalModelPattern = regexp.MustCompile(`^(claude-.+?)(-v2)?-(\d{8})$`)

	// nativeModelPattern recognizes ids already in Bedrock naming, so the
	// translation is idempotent.
	nativeModelPattern = regexp.MustCompile(`^anthropic\..+-v\d+:\d+$`)
)

// TranslateModel converts a canonical Claude model id to Bedrock naming: an
// "anthropic." prefix and a ":N" version suffix. A -v2 marker moves out of
// the middle segment into the suffix.
//
//	claude-opus-4-20250514         -> anthropic.claude-opus-4-20250514-v1:0
//	claude-3-5-sonnet-v2-20241022  -> anthropic.claude-3-5-sonnet-20241022-v2:0
//
// Already-native ids and ids that don't match the canonical shape pass
// through unchanged.
func TranslateModel(model string) string {
	if nativeModelPattern.MatchString(model) {
		return model
	}
	m := canonicalModelPattern.FindStringSubmatch(model)
	if m == nil {
		return model
	}
	if m[2] != "" {
		return "anthropic." + m[1] + "-" + m[3] + "-v2:0"
	}
	return "anthropic." + m[1] + "-" + m[3] + "-v1:0"
}
