package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/synapse-notes/backend/config"
	"github.com/synapse-notes/backend/services/gateway"
	"github.com/synapse-notes/backend/services/providers"
	"github.com/synapse-notes/backend/services/providers/gemini"
	"github.com/synapse-notes/backend/services/providers/huggingface"
	"github.com/synapse-notes/backend/services/providers/openai"
)

// Adapter id prefixes
const (
	hfChatName     = "hf-chat"
	groqVisionName = "groq-vision"
)

// BuildProviders registers every configured adapter and returns the ids
// that make up each capability chain. Gemini joins the vision chain only
// when an API key is set. httpClient may be nil.
func BuildProviders(ctx context.Context, cfg *config.Config, httpClient *http.Client) (*providers.Registry, gateway.AdapterIDs, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	hf := cfg.Providers.HuggingFace
	chat := openai.NewAdapter(openai.Config{
		Name:       hfChatName,
		APIKey:     hf.Token,
		BaseURL:    hf.ChatBaseURL,
		Model:      cfg.Gateway.ChatModel,
		HTTPClient: httpClient,
	})
	chatBackup := openai.NewAdapter(openai.Config{
		Name:       hfChatName,
		APIKey:     hf.Token,
		BaseURL:    hf.ChatBaseURL,
		Model:      cfg.Gateway.ChatBackupModel,
		HTTPClient: httpClient,
	})
	summarizer := huggingface.NewSummarizationAdapter(huggingface.Config{
		Token:      hf.Token,
		BaseURL:    hf.InferenceBaseURL,
		Model:      cfg.Gateway.SummarizationModel,
		HTTPClient: httpClient,
	})
	vision := openai.NewAdapter(openai.Config{
		Name:       groqVisionName,
		APIKey:     cfg.Providers.Groq.APIKey,
		BaseURL:    cfg.Providers.Groq.BaseURL,
		Model:      cfg.Gateway.VisionModel,
		HTTPClient: httpClient,
	})

	adapters := []providers.Adapter{chat, chatBackup, summarizer, vision}
	ids := gateway.AdapterIDs{
		Chat:       chat.ID(),
		ChatBackup: chatBackup.ID(),
		Summarizer: summarizer.ID(),
		Vision:     []string{vision.ID()},
	}

	if cfg.Providers.Gemini.APIKey != "" {
		g, err := gemini.NewAdapter(ctx, cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.Model, httpClient)
		if err != nil {
			return nil, gateway.AdapterIDs{}, fmt.Errorf("failed to create gemini adapter: %w", err)
		}
		adapters = append(adapters, g)
		ids.Vision = append(ids.Vision, g.ID())
	}

	registry := providers.NewRegistry()
	for _, adapter := range adapters {
		if err := registry.Register(adapter); err != nil {
			return nil, gateway.AdapterIDs{}, err
		}
	}
	return registry, ids, nil
}
