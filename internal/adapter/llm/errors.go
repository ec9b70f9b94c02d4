package llm

import "fmt"

// ErrorKind categorizes a failed LLM call. The kind determines retry policy:
// rate-limit, timeout and transient-network failures are retryable, everything
// else fails the call immediately.
type ErrorKind int

const (
	ErrKindConfiguration ErrorKind = iota
	ErrKindAuthentication
	ErrKindRateLimit
	ErrKindTimeout
	ErrKindTransientNetwork
	ErrKindMalformedResponse
	ErrKindUnsupportedProvider
	ErrKindUnknown
)

// String returns a human-readable description of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindConfiguration:
		return "configuration error"
	case ErrKindAuthentication:
		return "authentication error"
	case ErrKindRateLimit:
		return "rate limit exceeded"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindTransientNetwork:
		return "transient network error"
	case ErrKindMalformedResponse:
		return "malformed response"
	case ErrKindUnsupportedProvider:
		return "unsupported provider"
	default:
		return "unknown error"
	}
}

// Error is a classified LLM client error.
type Error struct {
	Kind       ErrorKind
	Provider   string
	Message    string
	StatusCode int
	Retryable  bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: %s (status: %d)", e.Provider, e.Kind.String(), e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind.String(), e.Message)
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// IsRetryable returns true if the error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewConfigurationError creates a configuration error. Configuration errors
// surface at construction time; no client exists without valid credentials.
func NewConfigurationError(provider, message string) *Error {
	return &Error{
		Kind:      ErrKindConfiguration,
		Message:   message,
		Retryable: false,
		Provider:  provider,
	}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(provider, message string) *Error {
	return &Error{
		Kind:       ErrKindAuthentication,
		Message:    message,
		StatusCode: 401,
		Retryable:  false,
		Provider:   provider,
	}
}

// NewRateLimitError creates a rate limit error.
func NewRateLimitError(provider, message string) *Error {
	return &Error{
		Kind:       ErrKindRateLimit,
		Message:    message,
		StatusCode: 429,
		Retryable:  true,
		Provider:   provider,
	}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(provider, message string) *Error {
	return &Error{
		Kind:      ErrKindTimeout,
		Message:   message,
		Retryable: true,
		Provider:  provider,
	}
}

// NewTransientNetworkError creates a connection-level error.
func NewTransientNetworkError(provider, message string) *Error {
	return &Error{
		Kind:      ErrKindTransientNetwork,
		Message:   message,
		Retryable: true,
		Provider:  provider,
	}
}

// NewMalformedResponseError creates a malformed response error. The transport
// call succeeded but the payload failed JSON or shape validation. Not
// retryable: resending the same prompt rarely fixes a broken contract.
func NewMalformedResponseError(provider, message string) *Error {
	return &Error{
		Kind:      ErrKindMalformedResponse,
		Message:   message,
		Retryable: false,
		Provider:  provider,
	}
}

// NewUnsupportedProviderError creates an unsupported provider error.
func NewUnsupportedProviderError(provider string) *Error {
	return &Error{
		Kind:      ErrKindUnsupportedProvider,
		Message:   fmt.Sprintf("unsupported provider %q (supported: anthropic, vertex, bedrock)", provider),
		Retryable: false,
		Provider:  provider,
	}
}
