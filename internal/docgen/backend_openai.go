package docgen

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackendClient talks to OpenAI (or an OpenAI-compatible deployment
// pointed at by baseURL) using the official SDK for model discovery. Chat
// still goes over the shared HTTP path, since the SDK does not expose
// response headers synchronously and the Rate Limiter needs them.
type OpenAIBackendClient struct {
	sdk  *openai.Client
	http *HTTPBackendClient
}

// NewOpenAIBackendClient wires both halves against the same credentials.
func NewOpenAIBackendClient(baseURL, apiKey string) *OpenAIBackendClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackendClient{
		sdk:  openai.NewClientWithConfig(cfg),
		http: NewHTTPBackendClient(baseURL, apiKey),
	}
}

func (c *OpenAIBackendClient) ListModels(ctx context.Context) (map[string]struct{}, error) {
	list, err := c.sdk.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai list models: %w", err)
	}
	out := make(map[string]struct{}, len(list.Models))
	for _, m := range list.Models {
		out[m.ID] = struct{}{}
	}
	return out, nil
}

func (c *OpenAIBackendClient) Chat(ctx context.Context, model string, messages []Message, params ChatParams) (string, http.Header, error) {
	return c.http.Chat(ctx, model, messages, params)
}

func (c *OpenAIBackendClient) Close() error {
	return c.http.Close()
}
