// Package openai implements an adapter for OpenAI-compatible
// /chat/completions endpoints. It serves the Hugging Face router chat
// models and Groq vision models.
package openai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	openaisdk "github.com/sashabaranov/go-openai"
	"github.com/synapse-notes/backend/services/providers"
)

// Config configures one adapter bound to one model
type Config struct {
	// Name prefixes the adapter id, e.g. "hf-chat" or "groq-vision"
	Name    string
	APIKey  string
	BaseURL string
	Model   string

	// HTTPClient is optional; per-call deadlines come from the context
	HTTPClient *http.Client
}

// Adapter implements providers.Adapter for an OpenAI-compatible API
type Adapter struct {
	id     string
	model  string
	client *openaisdk.Client
}

// NewAdapter creates a new OpenAI-compatible adapter
func NewAdapter(cfg Config) *Adapter {
	clientCfg := openaisdk.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &Adapter{
		id:     cfg.Name + ":" + cfg.Model,
		model:  cfg.Model,
		client: openaisdk.NewClientWithConfig(clientCfg),
	}
}

// ID returns the adapter id
func (a *Adapter) ID() string {
	return a.id
}

// Invoke performs a single chat completion request
func (a *Adapter) Invoke(ctx context.Context, req *providers.Request, opts providers.Options) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, a.buildRequest(req, opts))
	if err != nil {
		return "", a.classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", providers.NewProviderError(a.id, providers.KindInvalidResponse, "response has no choices", http.StatusOK, nil)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", providers.NewProviderError(a.id, providers.KindInvalidResponse, "empty completion", http.StatusOK, nil)
	}

	return content, nil
}

// buildRequest converts the guarded request to a chat completion request.
// Zero options are left unset so the provider defaults apply.
func (a *Adapter) buildRequest(req *providers.Request, opts providers.Options) openaisdk.ChatCompletionRequest {
	chatReq := openaisdk.ChatCompletionRequest{
		Model:       a.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	}

	if opts.SystemPrompt != "" {
		chatReq.Messages = append(chatReq.Messages, openaisdk.ChatCompletionMessage{
			Role:    openaisdk.ChatMessageRoleSystem,
			Content: opts.SystemPrompt,
		})
	}

	user := openaisdk.ChatCompletionMessage{Role: openaisdk.ChatMessageRoleUser}
	if req.Image != nil {
		user.MultiContent = []openaisdk.ChatMessagePart{
			{Type: openaisdk.ChatMessagePartTypeText, Text: req.Text},
			{Type: openaisdk.ChatMessagePartTypeImageURL, ImageURL: &openaisdk.ChatMessageImageURL{URL: req.Image.DataURL()}},
		}
	} else {
		user.Content = req.Text
	}
	chatReq.Messages = append(chatReq.Messages, user)

	return chatReq
}

// classify maps client errors onto provider error kinds
func (a *Adapter) classify(ctx context.Context, err error) error {
	var apiErr *openaisdk.APIError
	if errors.As(err, &apiErr) {
		return providers.ClassifyStatus(a.id, apiErr.HTTPStatusCode, []byte(apiErr.Message))
	}

	var reqErr *openaisdk.RequestError
	if errors.As(err, &reqErr) {
		return providers.ClassifyStatus(a.id, reqErr.HTTPStatusCode, []byte(reqErr.Error()))
	}

	var netErr net.Error
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return providers.ClassifyTransportError(ctx, a.id, err)
	}

	return providers.NewProviderError(a.id, providers.KindInvalidResponse, "failed to decode response", http.StatusOK, err)
}
