package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
)

// Transport issues Messages API calls to one backend through the official
// Anthropic SDK. The three provider adapters differ only in construction
// (credentials, SDK options, model translation); the wire call is identical,
// so they embed a Transport rather than repeating it. The SDK client is safe
// for concurrent use, which makes Transport safe to share across analyses.
type Transport struct {
	SDK          anthropic.Client
	ProviderName string
	Model        string // backend-native model id, fixed at construction
}

// RawComplete issues one completion request with no retry handling. SDK-level
// retries are disabled at construction; the retry protocol lives in Caller.
func (t *Transport) RawComplete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(t.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	msg, err := t.SDK.Messages.New(ctx, params)
	if err != nil {
		return nil, Classify(t.ProviderName, err)
	}

	var text string
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}

	return &CompletionResponse{
		Text:       text,
		Model:      string(msg.Model),
		TokensIn:   int(msg.Usage.InputTokens),
		TokensOut:  int(msg.Usage.OutputTokens),
		StopReason: string(msg.StopReason),
	}, nil
}

// ValidateAccess makes a minimal live call to confirm credentials and
// connectivity. One token of output is enough to prove both.
func (t *Transport) ValidateAccess(ctx context.Context) error {
	_, err := t.SDK.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(t.Model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return Classify(t.ProviderName, err)
	}
	return nil
}

// Provider returns the backend identifier.
func (t *Transport) Provider() string {
	return t.ProviderName
}

// NativeModel returns the backend-native model identifier.
func (t *Transport) NativeModel() string {
	return t.Model
}
