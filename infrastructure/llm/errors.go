package llm

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared across providers.
var (
	// ErrEmptyAPIKey indicates a provider was configured without
	// credentials.
	ErrEmptyAPIKey = errors.New("api key cannot be empty")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrNoResponseChoice indicates a chat completion carried no
	// choices.
	ErrNoResponseChoice = errors.New("no response choices returned")
)

// ErrorType classifies provider failures for retry decisions.
type ErrorType int

const (
	// ErrorTypeUnknown covers unclassified failures.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuth covers credential and permission failures.
	ErrorTypeAuth
	// ErrorTypeRateLimit covers quota and throttling responses.
	ErrorTypeRateLimit
	// ErrorTypeBadRequest covers malformed or rejected requests.
	ErrorTypeBadRequest
	// ErrorTypeServer covers provider-side failures.
	ErrorTypeServer
	// ErrorTypeTimeout covers deadline and cancellation failures.
	ErrorTypeTimeout
)

// ProviderError wraps a provider failure with its classification so
// middleware can decide whether a retry is worthwhile.
type ProviderError struct {
	// Provider names the backend that produced the failure.
	Provider string
	// Type classifies the failure.
	Type ErrorType
	// StatusCode is the HTTP status when known, zero otherwise.
	StatusCode int
	// Err is the wrapped provider error.
	Err error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s (%d): %v", e.Provider, e.typeString(), e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.typeString(), e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether retrying the request could succeed.
// Rate limits and server errors are transient; auth and bad-request
// failures are not.
func (e *ProviderError) IsRetryable() bool {
	return e.Type == ErrorTypeRateLimit || e.Type == ErrorTypeServer
}

func (e *ProviderError) typeString() string {
	switch e.Type {
	case ErrorTypeAuth:
		return "authentication failed"
	case ErrorTypeRateLimit:
		return "rate limit exceeded"
	case ErrorTypeBadRequest:
		return "bad request"
	case ErrorTypeServer:
		return "server error"
	case ErrorTypeTimeout:
		return "request timeout"
	default:
		return "request failed"
	}
}

// classifyStatus maps an HTTP status code onto an ErrorType.
func classifyStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuth
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorTypeBadRequest
	case statusCode >= 500:
		return ErrorTypeServer
	default:
		return ErrorTypeUnknown
	}
}

// wrapProviderError builds a classified ProviderError, recognizing
// context cancellation before falling back to the status code.
func wrapProviderError(provider string, statusCode int, err error) *ProviderError {
	errType := classifyStatus(statusCode)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		errType = ErrorTypeTimeout
	}
	return &ProviderError{
		Provider:   provider,
		Type:       errType,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsRetryableError reports whether the error chain contains a
// retryable provider failure.
func IsRetryableError(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.IsRetryable()
	}
	return false
}
