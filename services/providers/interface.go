package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// Adapter is a single inference endpoint bound to one model.
// Invoke performs exactly one outbound call and returns the normalized text.
type Adapter interface {
	// ID identifies the adapter in logs, metrics and responses (e.g. "hf-chat:Qwen/Qwen2.5-72B-Instruct")
	ID() string

	// Invoke runs one inference call. Failures are returned as *ProviderError.
	Invoke(ctx context.Context, req *Request, opts Options) (string, error)
}

// Request is the already-guarded payload handed to an adapter
type Request struct {
	// Text is the user turn: document, message, or the instruction that accompanies an image
	Text string

	// Image is set for vision capabilities only
	Image *Image
}

// Image is raw image bytes with their MIME type
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURL encodes the image as a data URL for OpenAI-style image_url parts
func (i *Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// Options are per-step provider knobs. Zero values mean "provider default".
type Options struct {
	// SystemPrompt is sent as the system message by chat adapters and ignored by task models
	SystemPrompt string

	Temperature float64

	// MaxTokens is max_tokens for chat models and max_length for summarization models
	MaxTokens int

	// MinLength is min_length for summarization models
	MinLength int
}

// ErrorKind classifies why a provider call failed
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindRateLimited     ErrorKind = "rate_limited"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindUnreachable     ErrorKind = "unreachable"
)

// ProviderError represents a failed call to a provider
type ProviderError struct {
	// Provider is the adapter id that generated the error
	Provider string

	Kind ErrorKind

	// Detail is a short operator-facing description
	Detail string

	// StatusCode is the HTTP status code (0 when no response was received)
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Detail)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider string, kind ErrorKind, detail string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Kind:       kind,
		Detail:     detail,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// KindOf returns the ErrorKind of a provider error. Context deadline errors
// count as timeouts; anything else that is not a *ProviderError is unreachable.
func KindOf(err error) ErrorKind {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnreachable
}
