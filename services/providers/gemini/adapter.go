// Package gemini implements a providers.Adapter on top of the Gemini API
// through google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/synapse-notes/backend/services/providers"
	"google.golang.org/genai"
)

// generator is the subset of *genai.Models the adapter needs
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Adapter implements providers.Adapter for Gemini models
type Adapter struct {
	id     string
	model  string
	models generator
}

// NewAdapter creates a Gemini API client for apiKey
func NewAdapter(ctx context.Context, apiKey, model string, httpClient *http.Client) (*Adapter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	return NewAdapterFromClient(client, model), nil
}

// NewAdapterFromClient wraps an existing genai client
func NewAdapterFromClient(c *genai.Client, model string) *Adapter {
	return newAdapter(c.Models, model)
}

func newAdapter(models generator, model string) *Adapter {
	return &Adapter{
		id:     "gemini:" + model,
		model:  model,
		models: models,
	}
}

// ID returns the adapter id
func (a *Adapter) ID() string {
	return a.id
}

// Invoke sends the text and optional image as one user turn
func (a *Adapter) Invoke(ctx context.Context, req *providers.Request, opts providers.Options) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Text)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	result, err := a.models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return "", a.classify(ctx, err)
	}

	text := ""
	if result != nil {
		text = strings.TrimSpace(result.Text())
	}
	if text == "" {
		return "", providers.NewProviderError(a.id, providers.KindInvalidResponse, "empty response", http.StatusOK, nil)
	}
	return text, nil
}

func (a *Adapter) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return providers.NewProviderError(a.id, providers.KindTimeout, "request timed out", 0, err)
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code != 0 {
		return providers.ClassifyStatus(a.id, code, []byte(err.Error()))
	}

	return providers.NewProviderError(a.id, providers.KindUnreachable, "request failed", 0, err)
}
