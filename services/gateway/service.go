// Package gateway implements the AI capabilities: input guarding, the
// per-capability fallback chains and their degrade policies.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/synapse-notes/backend/internal/observability"
	"github.com/synapse-notes/backend/internal/router"
	"github.com/synapse-notes/backend/services"
	"github.com/synapse-notes/backend/services/providers"
	"go.uber.org/zap"
)

// Capability names an AI operation
type Capability string

const (
	CapabilitySummarize    Capability = "summarize"
	CapabilityTranscribe   Capability = "transcribe"
	CapabilityImageToNotes Capability = "image_to_notes"
	CapabilityChat         Capability = "chat"
)

// Adapters are the resolved providers behind each chain
type Adapters struct {
	// Chat is the instruction model: summarize primary, chat primary
	Chat providers.Adapter
	// ChatBackup is the chat secondary
	ChatBackup providers.Adapter
	// Summarizer is the summarization model: summarize secondary, transcribe
	Summarizer providers.Adapter
	// Vision is the image-to-notes chain in priority order
	Vision []providers.Adapter
}

// AdapterIDs names the registry entries that make up Adapters
type AdapterIDs struct {
	Chat       string
	ChatBackup string
	Summarizer string
	Vision     []string
}

// ResolveAdapters looks up every chain member in the registry
func ResolveAdapters(reg *providers.Registry, ids AdapterIDs) (Adapters, error) {
	var out Adapters
	var err error

	if out.Chat, err = reg.Get(ids.Chat); err != nil {
		return Adapters{}, fmt.Errorf("chat adapter: %w", err)
	}
	if out.ChatBackup, err = reg.Get(ids.ChatBackup); err != nil {
		return Adapters{}, fmt.Errorf("chat backup adapter: %w", err)
	}
	if out.Summarizer, err = reg.Get(ids.Summarizer); err != nil {
		return Adapters{}, fmt.Errorf("summarizer adapter: %w", err)
	}
	if out.Vision, err = reg.Chain(ids.Vision...); err != nil {
		return Adapters{}, fmt.Errorf("vision chain: %w", err)
	}
	return out, nil
}

// Result is the shaped outcome of a capability call
type Result struct {
	Content string
	// Degraded is true when no provider succeeded and a fallback was substituted
	Degraded bool
	// ProviderUsed is empty when Degraded or ShortCircuited
	ProviderUsed string
	// ShortCircuited is true when the input was answered without any provider call
	ShortCircuited bool
	// Original echoes the input for short-circuited transcriptions
	Original string
}

// Service runs the AI capabilities
type Service struct {
	guard    *Guard
	executor *router.Executor
	adapters Adapters
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewService creates a gateway service. metrics may be nil.
func NewService(guard *Guard, executor *router.Executor, adapters Adapters, metrics *observability.Metrics, logger *zap.Logger) *Service {
	return &Service{
		guard:    guard,
		executor: executor,
		adapters: adapters,
		metrics:  metrics,
		logger:   logger,
	}
}

// Summarize produces bullet-point notes for a document.
// Exhaustion degrades to a busy notice.
func (s *Service) Summarize(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	doc, err := s.guard.Summarize(text)
	if err != nil {
		return nil, s.reject(CapabilitySummarize, start, err)
	}

	steps := []router.Step{
		{Adapter: s.adapters.Chat, Options: providers.Options{SystemPrompt: summarizeSystemPrompt, MaxTokens: 1000, Temperature: 0.5}},
		{Adapter: s.adapters.Summarizer, Options: providers.Options{MaxTokens: 200}},
	}

	return s.dispatch(ctx, CapabilitySummarize, start, steps, &providers.Request{Text: doc}, func() string {
		return MsgSummarizeBusy
	}, MsgSummarizeBusy)
}

// Transcribe condenses a transcript. Short transcripts are returned as-is;
// exhaustion degrades to the original text with a note.
func (s *Service) Transcribe(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	normalized, shortCircuit, err := s.guard.Transcribe(text)
	if err != nil {
		return nil, s.reject(CapabilityTranscribe, start, err)
	}
	if shortCircuit {
		s.metrics.RecordRequest(string(CapabilityTranscribe), observability.OutcomeSuccess, time.Since(start))
		return &Result{Content: normalized, Original: normalized, ShortCircuited: true}, nil
	}

	steps := []router.Step{
		{Adapter: s.adapters.Summarizer, Options: providers.Options{MaxTokens: 150, MinLength: 10}},
	}

	return s.dispatch(ctx, CapabilityTranscribe, start, steps, &providers.Request{Text: normalized}, func() string {
		return TranscribeBusyNote + text
	}, "")
}

// ImageToNotes turns a slide, diagram or photo into study notes. There is no degrade path.
func (s *Service) ImageToNotes(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	start := time.Now()

	img, err := s.guard.Image(data, mimeType)
	if err != nil {
		return nil, s.reject(CapabilityImageToNotes, start, err)
	}

	opts := providers.Options{MaxTokens: 1024, Temperature: 0.5}
	steps := make([]router.Step, 0, len(s.adapters.Vision))
	for _, a := range s.adapters.Vision {
		steps = append(steps, router.Step{Adapter: a, Options: opts})
	}

	return s.dispatch(ctx, CapabilityImageToNotes, start, steps, &providers.Request{Text: imageNotesPrompt, Image: img}, nil, MsgImageFailed)
}

// Chat answers a question grounded in the caller's notes. There is no degrade path.
func (s *Service) Chat(ctx context.Context, message, notesContext string) (*Result, error) {
	start := time.Now()

	msg, grounded, err := s.guard.Chat(message, notesContext)
	if err != nil {
		return nil, s.reject(CapabilityChat, start, err)
	}

	steps := []router.Step{
		{Adapter: s.adapters.Chat, Options: providers.Options{SystemPrompt: chatSystemPromptPrefix + grounded, MaxTokens: 500, Temperature: 0.6}},
		{Adapter: s.adapters.ChatBackup, Options: providers.Options{SystemPrompt: chatBackupSystemPromptPrefix + grounded, MaxTokens: 500}},
	}

	return s.dispatch(ctx, CapabilityChat, start, steps, &providers.Request{Text: msg}, nil, MsgChatBusy)
}

func (s *Service) dispatch(ctx context.Context, capability Capability, start time.Time, steps []router.Step, req *providers.Request, degrade router.DegradeFunc, exhaustedMsg string) (*Result, error) {
	res, err := s.executor.Execute(ctx, string(capability), steps, req, degrade)
	if err != nil {
		if errors.Is(err, router.ErrChainExhausted) {
			s.metrics.RecordRequest(string(capability), observability.OutcomeExhausted, time.Since(start))
			s.logger.Error("provider chain exhausted",
				zap.String("capability", string(capability)),
				zap.Error(err))
			return nil, services.WrapExternal(exhaustedMsg, err)
		}
		s.metrics.RecordRequest(string(capability), observability.OutcomeCanceled, time.Since(start))
		return nil, err
	}

	outcome := observability.OutcomeSuccess
	if res.Degraded {
		outcome = observability.OutcomeDegraded
	}
	s.metrics.RecordRequest(string(capability), outcome, time.Since(start))
	s.logger.Info("capability served",
		zap.String("capability", string(capability)),
		zap.String("outcome", outcome),
		zap.String("provider", res.ProviderUsed),
		zap.Int("attempts", len(res.Attempts)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Content:      res.Content,
		Degraded:     res.Degraded,
		ProviderUsed: res.ProviderUsed,
	}, nil
}

// reject converts a guard error into a validation DomainError
func (s *Service) reject(capability Capability, start time.Time, err error) error {
	s.metrics.RecordRequest(string(capability), observability.OutcomeRejected, time.Since(start))

	var verr *ValidationError
	if errors.As(err, &verr) {
		s.logger.Debug("input rejected",
			zap.String("capability", string(capability)),
			zap.String("reason", string(verr.Reason)))
		return services.NewDomainError(services.ErrorTypeValidation, verr.Message, verr).
			WithDetail("reason", string(verr.Reason))
	}
	return services.WrapInternal("failed to validate input", err)
}
