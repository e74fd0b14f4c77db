package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPProvider implements Provider against a live model-serving endpoint.
// It POSTs the Request as JSON and returns the response body verbatim,
// letting the caller's own structured-generation validation decide whether
// the bytes satisfy the requested schema.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider builds an HTTPProvider against baseURL using client. A
// nil client falls back to http.DefaultClient.
func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{baseURL: baseURL, client: client}
}

type httpRequestBody struct {
	Prompt string          `json:"prompt"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// Generate implements Provider.
func (p *HTTPProvider) Generate(ctx context.Context, req Request) ([]byte, error) {
	body, err := json.Marshal(httpRequestBody{Prompt: req.Prompt, Schema: req.Schema})
	if err != nil {
		return nil, fmt.Errorf("encode provider request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call model provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model provider returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

var _ Provider = (*HTTPProvider)(nil)
