package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synapse-notes/backend/services/providers"
)

const testModel = "sshleifer/distilbart-cnn-12-6"

func TestNewSummarizationAdapter(t *testing.T) {
	adapter := NewSummarizationAdapter(Config{
		Token:   "hf_x",
		BaseURL: "https://router.huggingface.co/hf-inference/models/",
		Model:   testModel,
	})

	assert.Equal(t, "hf-summarization:"+testModel, adapter.ID())
	assert.Equal(t, "https://router.huggingface.co/hf-inference/models/"+testModel, adapter.url)
}

func TestSummarizationAdapter_Invoke(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{name: "array wrapped", response: `[{"summary_text":" A short summary. "}]`, want: "A short summary."},
		{name: "bare object", response: `{"summary_text":"Object summary."}`, want: "Object summary."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/"+testModel, r.URL.Path)
				assert.Equal(t, "Bearer hf_x", r.Header.Get("Authorization"))

				var req SummarizationRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "long transcript text", req.Inputs)
				require.NotNil(t, req.Parameters)
				assert.Equal(t, 150, *req.Parameters.MaxLength)
				assert.Equal(t, 10, *req.Parameters.MinLength)

				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			adapter := NewSummarizationAdapter(Config{Token: "hf_x", BaseURL: server.URL, Model: testModel})
			got, err := adapter.Invoke(context.Background(), &providers.Request{Text: "long transcript text"}, providers.Options{
				MaxTokens: 150,
				MinLength: 10,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarizationAdapter_Invoke_OmitsZeroParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.NotContains(t, raw, "parameters")
		w.Write([]byte(`[{"summary_text":"ok"}]`))
	}))
	defer server.Close()

	adapter := NewSummarizationAdapter(Config{BaseURL: server.URL, Model: testModel})
	_, err := adapter.Invoke(context.Background(), &providers.Request{Text: "x"}, providers.Options{})
	require.NoError(t, err)
}

func TestSummarizationAdapter_Invoke_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind providers.ErrorKind
	}{
		{name: "model loading", status: http.StatusServiceUnavailable, body: `{"error":"Model is currently loading"}`, wantKind: providers.KindUnreachable},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantKind: providers.KindRateLimited},
		{name: "gateway timeout", status: http.StatusGatewayTimeout, body: ``, wantKind: providers.KindTimeout},
		{name: "empty list", status: http.StatusOK, body: `[]`, wantKind: providers.KindInvalidResponse},
		{name: "missing field", status: http.StatusOK, body: `[{"generated_text":"x"}]`, wantKind: providers.KindInvalidResponse},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantKind: providers.KindInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			adapter := NewSummarizationAdapter(Config{BaseURL: server.URL, Model: testModel})
			_, err := adapter.Invoke(context.Background(), &providers.Request{Text: "x"}, providers.Options{})

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, providers.KindOf(err))
		})
	}
}
