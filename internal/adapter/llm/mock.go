package llm

import (
	"context"
	"sync"
)

// MockResponse defines one canned outcome for the mock client.
type MockResponse struct {
	Text string
	Err  error
}

// MockClient is a test double implementing Client. It returns pre-configured
// responses in sequence, repeating the last one once exhausted, and records
// every request for later assertion.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []CompletionRequest
	idx       int

	ProviderName string
	Model        string
	ValidateErr  error
}

// Compile-time check that MockClient satisfies the Client interface.
var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock that returns the given responses in order.
// If no responses are provided, RawComplete returns an empty response.
func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{
		responses:    responses,
		ProviderName: "mock",
		Model:        "mock-model",
	}
}

// RawComplete returns the next canned response and records the request.
func (m *MockClient) RawComplete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.responses) == 0 {
		return &CompletionResponse{Model: m.Model}, nil
	}

	r := m.responses[m.idx]
	if m.idx < len(m.responses)-1 {
		m.idx++
	}

	if r.Err != nil {
		return nil, r.Err
	}

	return &CompletionResponse{
		Text:      r.Text,
		Model:     m.Model,
		TokensIn:  10,
		TokensOut: 5,
	}, nil
}

// ValidateAccess returns the configured validation error, or nil.
func (m *MockClient) ValidateAccess(ctx context.Context) error {
	return m.ValidateErr
}

// Provider returns the mock provider name.
func (m *MockClient) Provider() string {
	return m.ProviderName
}

// NativeModel returns the mock model id.
func (m *MockClient) NativeModel() string {
	return m.Model
}

// Calls returns a copy of all requests received by this mock.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
