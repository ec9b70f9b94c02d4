package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// Classify converts an arbitrary transport error into a classified *Error.
// Providers call this at their boundary so that everything above them only
// ever sees the taxonomy. Already-classified errors pass through unchanged.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	// API-level failures carry an HTTP status code.
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return classifyStatus(provider, apierr.StatusCode, err.Error())
	}

	// Deadline and cancellation map to the timeout bucket; the per-call
	// transport timeout surfaces this way.
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(provider, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewTimeoutError(provider, err.Error())
		}
		return NewTransientNetworkError(provider, err.Error())
	}

	// Connection resets and refusals from lower layers don't always
	// implement net.Error.
	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "EOF") {
		return NewTransientNetworkError(provider, msg)
	}

	return &Error{
		Kind:      ErrKindUnknown,
		Provider:  provider,
		Message:   msg,
		Retryable: false,
	}
}

// classifyStatus maps HTTP status codes to the error taxonomy.
func classifyStatus(provider string, status int, message string) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{
			Kind:       ErrKindAuthentication,
			Provider:   provider,
			Message:    message,
			StatusCode: status,
			Retryable:  false,
		}
	case status == http.StatusTooManyRequests:
		return &Error{
			Kind:       ErrKindRateLimit,
			Provider:   provider,
			Message:    message,
			StatusCode: status,
			Retryable:  true,
		}
	case status == http.StatusRequestTimeout:
		return &Error{
			Kind:       ErrKindTimeout,
			Provider:   provider,
			Message:    message,
			StatusCode: status,
			Retryable:  true,
		}
	case status == 529:
		// Anthropic "overloaded_error"; throttle like a rate limit.
		return &Error{
			Kind:       ErrKindRateLimit,
			Provider:   provider,
			Message:    message,
			StatusCode: status,
			Retryable:  true,
		}
	case status >= 500:
		return &Error{
			Kind:       ErrKindTransientNetwork,
			Provider:   provider,
			Message:    message,
			StatusCode: status,
			Retryable:  true,
		}
	default:
		return &Error{
			Kind:       ErrKindUnknown,
			Provider:   provider,
			Message:    message,
			StatusCode: status,
			Retryable:  false,
		}
	}
}
