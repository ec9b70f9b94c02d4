package llm

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy holds configuration for the shared retry logic. Rate-limit
// failures back off from a larger base than other transient failures, both
// capped at MaxBackoff.
type RetryPolicy struct {
	MaxRetries    int
	RateLimitBase time.Duration
	TransientBase time.Duration
	MaxBackoff    time.Duration
}

// DefaultRetryPolicy returns the standard retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		RateLimitBase: 5 * time.Second,
		TransientBase: 1 * time.Second,
		MaxBackoff:    30 * time.Second,
	}
}

// Backoff calculates the wait before the next attempt.
// Formula: min(base * 2^attempt, MaxBackoff), attempt counting from 0.
func (p RetryPolicy) Backoff(attempt int, kind ErrorKind) time.Duration {
	base := p.TransientBase
	if kind == ErrKindRateLimit {
		base = p.RateLimitBase
	}

	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if backoff > p.MaxBackoff {
		return p.MaxBackoff
	}
	return backoff
}

// Caller wraps a Client with the shared retry protocol. It makes at most
// MaxRetries+1 attempts; fatal classifications end the sequence immediately
// regardless of remaining budget, and the first success short-circuits.
type Caller struct {
	client Client
	policy RetryPolicy
	logger Logger
}

// NewCaller decorates client with the given retry policy. A nil logger
// disables call logging.
func NewCaller(client Client, policy RetryPolicy, logger Logger) *Caller {
	return &Caller{
		client: client,
		policy: policy,
		logger: logger,
	}
}

// Client returns the wrapped client.
func (c *Caller) Client() Client {
	return c.client
}

// Complete issues the request, retrying retryable failures with exponential
// backoff. The context is checked before every attempt, so callers that want
// a deadline across the whole sequence can cancel it; there is no built-in
// total deadline, only the per-call transport timeout.
func (c *Caller) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr *Error
	attempts := 0

	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, Classify(c.client.Provider(), err)
		}

		attempts++
		start := time.Now()
		resp, err := c.client.RawComplete(ctx, req)
		if err == nil {
			c.logResponse(ctx, resp, time.Since(start))
			return resp, nil
		}

		lastErr = Classify(c.client.Provider(), err)
		c.logError(ctx, lastErr, time.Since(start))

		if !lastErr.IsRetryable() {
			return nil, lastErr
		}
		if attempt >= c.policy.MaxRetries {
			break
		}

		backoff := c.policy.Backoff(attempt, lastErr.Kind)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, Classify(c.client.Provider(), ctx.Err())
		}
	}

	return nil, &Error{
		Kind:       lastErr.Kind,
		Provider:   c.client.Provider(),
		Message:    fmt.Sprintf("call failed after %d attempts: %s", attempts, lastErr.Message),
		StatusCode: lastErr.StatusCode,
		Retryable:  false,
	}
}

func (c *Caller) logResponse(ctx context.Context, resp *CompletionResponse, duration time.Duration) {
	if c.logger == nil {
		return
	}
	c.logger.LogResponse(ctx, ResponseLog{
		Provider:     c.client.Provider(),
		Model:        resp.Model,
		Timestamp:    time.Now(),
		Duration:     duration,
		TokensIn:     resp.TokensIn,
		TokensOut:    resp.TokensOut,
		FinishReason: resp.StopReason,
	})
}

func (c *Caller) logError(ctx context.Context, err *Error, duration time.Duration) {
	if c.logger == nil {
		return
	}
	c.logger.LogError(ctx, ErrorLog{
		Provider:   c.client.Provider(),
		Model:      c.client.NativeModel(),
		Timestamp:  time.Now(),
		Duration:   duration,
		Error:      err,
		Kind:       err.Kind,
		StatusCode: err.StatusCode,
		Retryable:  err.Retryable,
	})
}
