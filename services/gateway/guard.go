package gateway

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/synapse-notes/backend/services/providers"
)

// Reason classifies a rejected input
type Reason string

const (
	ReasonTooShort     Reason = "too_short"
	ReasonMissingInput Reason = "missing_input"
)

// Client-facing validation messages
const (
	MsgTextTooShort      = "Text is too short or empty."
	MsgNoTranscribeText  = "No text provided for summarization."
	MsgNoImage           = "No image provided."
	MsgNoChatMessage     = "No message provided."
	NoContextPlaceholder = "No context provided."
)

// ValidationError is returned by the guard. It never reaches the executor.
type ValidationError struct {
	Reason  Reason
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Limits are the input bounds, counted in runes
type Limits struct {
	SummarizeMinChars   int
	SummarizeMaxChars   int
	TranscribeMinChars  int
	ChatContextMaxChars int
}

// DefaultLimits returns the production limits
func DefaultLimits() Limits {
	return Limits{
		SummarizeMinChars:   20,
		SummarizeMaxChars:   12000,
		TranscribeMinChars:  50,
		ChatContextMaxChars: 3000,
	}
}

// Guard validates and normalizes capability inputs. It is pure and safe for concurrent use.
type Guard struct {
	limits Limits
}

// NewGuard creates a guard. Non-positive limits fall back to the defaults.
func NewGuard(limits Limits) *Guard {
	def := DefaultLimits()
	if limits.SummarizeMinChars <= 0 {
		limits.SummarizeMinChars = def.SummarizeMinChars
	}
	if limits.SummarizeMaxChars <= 0 {
		limits.SummarizeMaxChars = def.SummarizeMaxChars
	}
	if limits.TranscribeMinChars <= 0 {
		limits.TranscribeMinChars = def.TranscribeMinChars
	}
	if limits.ChatContextMaxChars <= 0 {
		limits.ChatContextMaxChars = def.ChatContextMaxChars
	}
	return &Guard{limits: limits}
}

// Limits returns the effective limits
func (g *Guard) Limits() Limits {
	return g.limits
}

// Summarize rejects documents whose trimmed length is below the minimum.
// The untrimmed text is truncated to the maximum.
func (g *Guard) Summarize(text string) (string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < g.limits.SummarizeMinChars {
		return "", &ValidationError{Reason: ReasonTooShort, Message: MsgTextTooShort}
	}
	return Truncate(text, g.limits.SummarizeMaxChars), nil
}

// Transcribe rejects empty text. Text shorter than the minimum, blank or
// not, is marked for short-circuit: it is its own summary and no provider
// is called.
func (g *Guard) Transcribe(text string) (normalized string, shortCircuit bool, err error) {
	if text == "" {
		return "", false, &ValidationError{Reason: ReasonMissingInput, Message: MsgNoTranscribeText}
	}
	if utf8.RuneCountInString(text) < g.limits.TranscribeMinChars {
		return text, true, nil
	}
	return text, false, nil
}

// Chat requires a message and normalizes the grounding context
func (g *Guard) Chat(message, context string) (string, string, error) {
	if strings.TrimSpace(message) == "" {
		return "", "", &ValidationError{Reason: ReasonMissingInput, Message: MsgNoChatMessage}
	}
	if strings.TrimSpace(context) == "" {
		return message, NoContextPlaceholder, nil
	}
	return message, Truncate(context, g.limits.ChatContextMaxChars), nil
}

// Image requires non-empty bytes of an image MIME type. An empty MIME type is sniffed.
func (g *Guard) Image(data []byte, mimeType string) (*providers.Image, error) {
	if len(data) == 0 {
		return nil, &ValidationError{Reason: ReasonMissingInput, Message: MsgNoImage}
	}

	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return nil, &ValidationError{Reason: ReasonMissingInput, Message: MsgNoImage}
	}

	return &providers.Image{Data: data, MIMEType: mimeType}, nil
}

// Truncate returns at most max runes of s
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
