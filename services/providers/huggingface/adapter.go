// Package huggingface implements an adapter for Hugging Face hosted
// summarization models (the hf-inference task API).
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/synapse-notes/backend/services/providers"
)

// Config configures a summarization adapter for one model
type Config struct {
	Token string
	// BaseURL is the models root; the model id is appended as a path
	BaseURL string
	Model   string

	HTTPClient *http.Client
}

// SummarizationAdapter implements providers.Adapter for summarization task models
type SummarizationAdapter struct {
	id         string
	token      string
	url        string
	httpClient *http.Client
}

// NewSummarizationAdapter creates a new summarization adapter
func NewSummarizationAdapter(cfg Config) *SummarizationAdapter {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &SummarizationAdapter{
		id:         "hf-summarization:" + cfg.Model,
		token:      cfg.Token,
		url:        strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Model,
		httpClient: client,
	}
}

// ID returns the adapter id
func (a *SummarizationAdapter) ID() string {
	return a.id
}

// Invoke summarizes req.Text. opts.MaxTokens and opts.MinLength map to max_length and min_length.
func (a *SummarizationAdapter) Invoke(ctx context.Context, req *providers.Request, opts providers.Options) (string, error) {
	body := SummarizationRequest{Inputs: req.Text}
	if opts.MaxTokens > 0 || opts.MinLength > 0 {
		body.Parameters = &SummarizationParameters{}
		if opts.MaxTokens > 0 {
			body.Parameters.MaxLength = &opts.MaxTokens
		}
		if opts.MinLength > 0 {
			body.Parameters.MinLength = &opts.MinLength
		}
	}

	respBody, err := providers.PostJSON(ctx, a.httpClient, a.id, a.url, map[string]string{
		"Authorization": "Bearer " + a.token,
	}, body)
	if err != nil {
		return "", err
	}

	summary, err := parseSummary(respBody)
	if err != nil {
		return "", providers.NewProviderError(a.id, providers.KindInvalidResponse, "failed to parse summarization response", http.StatusOK, err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", providers.NewProviderError(a.id, providers.KindInvalidResponse, "empty summary", http.StatusOK, nil)
	}

	return summary, nil
}

// parseSummary accepts both [{"summary_text": ...}] and {"summary_text": ...}
func parseSummary(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []SummarizationResult
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", err
		}
		if len(list) == 0 {
			return "", nil
		}
		return list[0].SummaryText, nil
	}

	var single SummarizationResult
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return "", err
	}
	return single.SummaryText, nil
}

// Wire types

type SummarizationRequest struct {
	Inputs     string                   `json:"inputs"`
	Parameters *SummarizationParameters `json:"parameters,omitempty"`
}

type SummarizationParameters struct {
	MaxLength *int `json:"max_length,omitempty"`
	MinLength *int `json:"min_length,omitempty"`
}

type SummarizationResult struct {
	SummaryText string `json:"summary_text"`
}
