package docgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

// AnthropicBackendClient adapts Anthropic's Messages API to the BackendClient
// contract. Anthropic's response carries no rate-limit headers the Router
// can act on synchronously the way Groq's do, so rate-limit coordination for
// this provider degrades to the Rate Limiter's steady-state pacing alone;
// that degradation is logged once per process, not once per call.
type AnthropicBackendClient struct {
	sdk       *anthropic.Client
	models    map[string]struct{}
	maxTokens int64
	logger    *logrus.Logger

	warnOnce sync.Once
}

// NewAnthropicBackendClient builds a client against the configured models.
// Anthropic exposes no model-listing endpoint this module relies on, so
// ListModels reports the configured set rather than discovering it remotely.
func NewAnthropicBackendClient(apiKey string, configuredModels []string, maxTokens int64, logger *logrus.Logger) *AnthropicBackendClient {
	models := make(map[string]struct{}, len(configuredModels))
	for _, m := range configuredModels {
		models[m] = struct{}{}
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicBackendClient{sdk: &client, models: models, maxTokens: maxTokens, logger: logger}
}

func (c *AnthropicBackendClient) ListModels(ctx context.Context) (map[string]struct{}, error) {
	return c.models, nil
}

func (c *AnthropicBackendClient) Chat(ctx context.Context, model string, messages []Message, params ChatParams) (string, http.Header, error) {
	c.warnOnce.Do(func() {
		if c.logger != nil {
			c.logger.Warn("anthropic backend exposes no rate-limit headers; falling back to steady-interval pacing only")
		}
	})

	sdkMessages := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		sdkMessages = append(sdkMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	maxTokens := c.maxTokens
	if params.MaxCompletionTokens > 0 {
		maxTokens = int64(params.MaxCompletionTokens)
	}

	resp, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  sdkMessages,
	})
	if err != nil {
		return "", nil, translateAnthropicError(err)
	}
	if len(resp.Content) == 0 {
		return "", nil, fmt.Errorf("anthropic response contained no content blocks")
	}

	return resp.Content[0].Text, nil, nil
}

func (c *AnthropicBackendClient) Close() error {
	return nil
}

// translateAnthropicError maps the SDK's error into the shared BackendError
// shape so the Router's classification logic works unmodified.
func translateAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &BackendError{Status: apiErr.StatusCode, ErrType: apiErr.Type, Message: apiErr.Message}
	}
	return err
}
