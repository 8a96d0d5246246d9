package llm

import (
	"fmt"
	"time"
)

// ConfigurationError means the provider cannot run at all (missing API key,
// bad base URL). Never retryable.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("llm configuration error: %s", e.Reason)
}

// RateLimitError is raised locally when the client-side request budget for
// the current minute is exhausted, before any network call is made.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("llm rate limit reached, retry after %s", e.RetryAfter)
}

// UpstreamError is a non-2xx answer from the provider API.
type UpstreamError struct {
	StatusCode int
	Type       string
	Message    string
	Retryable  bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm upstream error (status %d, type %q): %s", e.StatusCode, e.Type, e.Message)
}

// InvalidResponseError means the provider answered 2xx but the envelope was
// unusable (no choices, empty content, unparsable body).
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("llm invalid response: %s", e.Reason)
}
