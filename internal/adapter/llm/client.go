// Package llm defines the provider-agnostic LLM client contract shared by the
// Anthropic, Vertex AI and Bedrock adapters, plus the retry and error
// classification layer that wraps them.
package llm

import "context"

// DefaultMaxTokens is the output token budget used when a request does not
// set one. Sized for claude-opus-4.
const DefaultMaxTokens = 16384

// CompletionRequest describes a single raw completion call.
type CompletionRequest struct {
	// Prompt is the user message to send.
	Prompt string

	// SystemPrompt sets the system instruction. Optional.
	SystemPrompt string

	// MaxTokens limits the response length. Zero means DefaultMaxTokens.
	MaxTokens int
}

// CompletionResponse holds the result of a raw completion call.
type CompletionResponse struct {
	// Text is the concatenated text content returned by the model.
	Text string

	// Model is the model that served the request, as reported by the
	// backend (native naming, not canonical).
	Model string

	// TokensIn and TokensOut report token usage for the call.
	TokensIn  int
	TokensOut int

	// StopReason explains why generation ended.
	StopReason string
}

// Client is the uniform surface over one backend. Implementations own a
// long-lived transport handle and a translation of the canonical model id
// into the backend's native naming; both are fixed at construction. A Client
// is safe for concurrent use.
type Client interface {
	// RawComplete issues one completion request with no retry handling.
	// Failures are returned classified as *Error.
	RawComplete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// ValidateAccess confirms credentials and connectivity with a minimal
	// live call. It is for preflight checks only, never business logic.
	ValidateAccess(ctx context.Context) error

	// Provider returns the backend identifier ("anthropic", "vertex",
	// "bedrock").
	Provider() string

	// NativeModel returns the backend-native model identifier derived from
	// the configured canonical id.
	NativeModel() string
}
