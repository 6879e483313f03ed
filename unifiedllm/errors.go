package unifiedllm

import (
	"errors"
	"fmt"
	"strings"
)

// SDKError is the base for every error produced by this package.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SDKError) Unwrap() error { return e.Cause }

// ConfigurationError is returned by adapter constructors when required
// settings such as the API key are missing.
type ConfigurationError struct {
	SDKError
}

// NetworkError wraps a transport failure (dial, TLS, timeout, read).
type NetworkError struct {
	SDKError
}

// ProviderError is a non-200 response from a provider.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
	// Code is the provider error code or type, e.g. "context_length_exceeded".
	Code string
	// RetryAfter is the parsed Retry-After header in seconds, if present.
	RetryAfter *float64
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	return msg + ": " + e.Message
}

// ContextOverflowError reports that the conversation exceeded the model's
// context window.
type ContextOverflowError struct {
	SDKError
	Provider string
}

// UnsupportedCapabilityError is returned when a backend is asked for
// something it cannot do, such as embeddings.
type UnsupportedCapabilityError struct {
	SDKError
	Provider   string
	Capability string
}

// ErrContextLengthCode is the error code providers use for oversized prompts.
const ErrContextLengthCode = "context_length_exceeded"

// IsUnsupportedCapability reports whether err is a hard capability refusal.
func IsUnsupportedCapability(err error) bool {
	var uce *UnsupportedCapabilityError
	return errors.As(err, &uce)
}

// contextLengthPhrase reports whether msg mentions a context-length
// violation.
func contextLengthPhrase(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "context length") ||
		strings.Contains(msg, ErrContextLengthCode) ||
		strings.Contains(msg, "maximum context length")
}
