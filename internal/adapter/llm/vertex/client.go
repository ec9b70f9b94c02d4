// Package vertex adapts Claude on Google Vertex AI behind the shared
// llm.Client contract.
package vertex

import (
	"context"
	"regexp"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	sdkvertex "github.com/anthropics/anthropic-sdk-go/vertex"

	"github.com/bkyoung/sectriage/internal/adapter/llm"
)

const providerName = "vertex"

// Options configures the Vertex AI adapter.
type Options struct {
	ProjectID string
	Region    string
	Model     string        // canonical model id
	Timeout   time.Duration // per-call transport timeout
	BaseURL   string        // override for testing
}

// Client is the Vertex-hosted provider adapter.
type Client struct {
	*llm.Transport
}

// Compile-time check that Client satisfies the llm.Client interface.
var _ llm.Client = (*Client)(nil)

// New constructs the adapter. Credential checks happen before the Google auth
// handshake so a missing project or region surfaces as a configuration error,
// not an opaque transport failure. The context is used to resolve Google
// application-default credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.ProjectID == "" {
		return nil, llm.NewConfigurationError(providerName, "Google Cloud project ID is required (GOOGLE_CLOUD_PROJECT)")
	}
	if opts.Region == "" {
		return nil, llm.NewConfigurationError(providerName, "Google Cloud region is required (GOOGLE_CLOUD_REGION)")
	}

	clientOpts := []option.RequestOption{
		sdkvertex.WithGoogleAuth(ctx, opts.Region, opts.ProjectID),
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

// canonicalModelPattern matches claude-<family>-<version>-<YYYYMMDD>, with an
// optional -v2 marker before the date.
var canonicalModelPattern = regexp.MustCompile(`^(claude-.+?)(-v2)?-(\d{8})$`)

// TranslateModel converts a canonical Claude model id to Vertex naming:
// the date segment joins with "@" instead of "-", and a trailing -v2 version
// marker is dropped from the dash form first.
//
//	claude-opus-4-20250514         -> claude-opus-4@20250514
//	claude-3-5-sonnet-v2-20241022  -> claude-3-5-sonnet@20241022
//
// Ids that don't match the canonical shape pass through unchanged.
func TranslateModel(model string) string {
	m := canonicalModelPattern.FindStringSubmatch(model)
	if m == nil {
		return model
	}
	return m[1] + "@" + m[3]
}
