package docgen

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiBackendClient adapts Google's Generative AI SDK to the BackendClient
// contract. Like AnthropicBackendClient, it exposes no synchronous
// rate-limit headers, so it degrades to steady-interval pacing only.
type GeminiBackendClient struct {
	sdk       *genai.Client
	models    map[string]struct{}
	maxTokens int32
	logger    *logrus.Logger

	warnOnce sync.Once
}

// NewGeminiBackendClient builds a client against the configured models.
func NewGeminiBackendClient(ctx context.Context, apiKey string, configuredModels []string, maxTokens int32, logger *logrus.Logger) (*GeminiBackendClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	models := make(map[string]struct{}, len(configuredModels))
	for _, m := range configuredModels {
		models[m] = struct{}{}
	}

	return &GeminiBackendClient{sdk: client, models: models, maxTokens: maxTokens, logger: logger}, nil
}

func (c *GeminiBackendClient) ListModels(ctx context.Context) (map[string]struct{}, error) {
	return c.models, nil
}

func (c *GeminiBackendClient) Chat(ctx context.Context, model string, messages []Message, params ChatParams) (string, http.Header, error) {
	c.warnOnce.Do(func() {
		if c.logger != nil {
			c.logger.Warn("gemini backend exposes no rate-limit headers; falling back to steady-interval pacing only")
		}
	})

	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}

	maxTokens := c.maxTokens
	if params.MaxCompletionTokens > 0 {
		maxTokens = int32(params.MaxCompletionTokens)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     ptrFloat32(float32(params.Temperature)),
		MaxOutputTokens: maxTokens,
	}

	resp, err := c.sdk.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil, fmt.Errorf("gemini returned no content")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil, nil
}

func (c *GeminiBackendClient) Close() error {
	return nil
}

func ptrFloat32(v float32) *float32 {
	return &v
}
