package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// maxResponseBytes caps how much of a provider response is read
const maxResponseBytes = 4 << 20

// PostJSON sends body as JSON to url and returns the raw response body.
// It serves provider task APIs that have no client SDK.
// Transport failures and non-2xx statuses are returned as *ProviderError.
func PostJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewProviderError(provider, KindInvalidResponse, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, NewProviderError(provider, KindUnreachable, "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransportError(ctx, provider, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, ClassifyTransportError(ctx, provider, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, ClassifyStatus(provider, httpResp.StatusCode, respBody)
	}

	return respBody, nil
}

// ClassifyStatus maps a non-2xx HTTP status to a ProviderError
func ClassifyStatus(provider string, statusCode int, body []byte) *ProviderError {
	detail := fmt.Sprintf("unexpected status %d", statusCode)
	cause := errors.New(truncate(string(body), 512))

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewProviderError(provider, KindRateLimited, detail, statusCode, cause)
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return NewProviderError(provider, KindTimeout, detail, statusCode, cause)
	case statusCode >= 500:
		return NewProviderError(provider, KindUnreachable, detail, statusCode, cause)
	default:
		return NewProviderError(provider, KindInvalidResponse, detail, statusCode, cause)
	}
}

// ClassifyTransportError maps a failed round trip to a timeout or an
// unreachable ProviderError.
func ClassifyTransportError(ctx context.Context, provider string, err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewProviderError(provider, KindTimeout, "request timed out", 0, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewProviderError(provider, KindTimeout, "request timed out", 0, err)
	}
	return NewProviderError(provider, KindUnreachable, "request failed", 0, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
