package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("llm: provider not configured, set api key")

	// ErrMalformedResponse is returned when a structured completion cannot
	// be parsed. Parse failures are never retried.
	ErrMalformedResponse = errors.New("llm: malformed structured response")
)

// ProviderError is a non-2xx answer from the completion provider.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%d): %s", e.StatusCode, e.Message)
}

// Transient reports whether the failure is worth retrying.
func (e *ProviderError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// transient classifies an error as retryable. Rate limits, server errors,
// timeouts, and transport failures retry; everything else fails fast.
func transient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return false
}
