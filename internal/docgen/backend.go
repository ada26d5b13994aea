package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BackendError carries the HTTP status and the server's error payload so the
// Router can classify failures without re-parsing the transport layer.
type BackendError struct {
	Status  int
	ErrType string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (status=%d type=%q): %s", e.Status, e.ErrType, e.Message)
}

// DefaultBackendBaseURL is the OpenAI-compatible endpoint this module talks
// to when no override is configured.
const DefaultBackendBaseURL = "https://api.groq.com/openai/v1"

// HTTPBackendClient issues chat-completion requests directly over net/http
// against any OpenAI-wire-compatible endpoint. It deliberately bypasses any
// provider SDK: the Router needs synchronous access to raw response headers
// (x-ratelimit-remaining-tokens, x-ratelimit-reset-tokens, retry-after) to
// drive the shared RateLimiter, and no SDK response type exposes those.
type HTTPBackendClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPBackendClient builds a client against baseURL (default
// DefaultBackendBaseURL when empty) with a 90s per-request timeout.
func NewHTTPBackendClient(baseURL, apiKey string) *HTTPBackendClient {
	if baseURL == "" {
		baseURL = DefaultBackendBaseURL
	}
	return &HTTPBackendClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ListModels fetches the backend's current model catalog.
func (c *HTTPBackendClient) ListModels(ctx context.Context) (map[string]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, backendErrorFromBody(resp.StatusCode, body)
	}

	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse models response: %w", err)
	}

	out := make(map[string]struct{}, len(parsed.Data))
	for _, m := range parsed.Data {
		if m.ID != "" {
			out[m.ID] = struct{}{}
		}
	}
	return out, nil
}

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         float64   `json:"temperature"`
	TopP                float64   `json:"top_p"`
	MaxCompletionTokens int       `json:"max_completion_tokens"`
	Stream              bool      `json:"stream"`
	ServiceTier         string    `json:"service_tier,omitempty"`
	ReasoningEffort     string    `json:"reasoning_effort,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat issues one non-streaming chat-completion request. Streaming is never
// requested: the Router needs headers available synchronously alongside the
// body, which a streamed response does not offer until the stream closes.
func (c *HTTPBackendClient) Chat(ctx context.Context, model string, messages []Message, params ChatParams) (string, http.Header, error) {
	effort := effectiveReasoningEffort(model, params.ReasoningEffort)

	body := chatRequest{
		Model:               model,
		Messages:            messages,
		Temperature:         params.Temperature,
		TopP:                params.TopP,
		MaxCompletionTokens: params.MaxCompletionTokens,
		Stream:              false,
		ReasoningEffort:     effort,
	}
	if tier := effectiveServiceTier(params.ServiceTier); tier != "" {
		body.ServiceTier = tier
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.Header, err
	}

	if resp.StatusCode >= 300 {
		return "", resp.Header, backendErrorFromBody(resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", resp.Header, fmt.Errorf("parse chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", resp.Header, fmt.Errorf("chat response contained no choices")
	}

	return parsed.Choices[0].Message.Content, resp.Header, nil
}

// Close releases idle connections held by the underlying transport.
func (c *HTTPBackendClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func backendErrorFromBody(status int, body []byte) *BackendError {
	var parsed struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &BackendError{Status: status, Message: string(body)}
	}
	return &BackendError{Status: status, ErrType: parsed.Error.Type, Message: parsed.Error.Message}
}

// effectiveReasoningEffort applies per-model-family normalization. Models
// outside the two known families never receive the field.
func effectiveReasoningEffort(model, requested string) string {
	if requested == "" {
		return ""
	}

	switch model {
	case "openai/gpt-oss-20b", "openai/gpt-oss-120b":
		switch requested {
		case "low", "medium", "high":
			return requested
		case "default":
			return "medium"
		}
		return ""
	case "qwen/qwen3-32b":
		switch requested {
		case "none", "default":
			return requested
		case "low", "medium", "high":
			return "default"
		}
		return ""
	}
	return ""
}

// effectiveServiceTier omits the field entirely when unset or "on-demand"
// (the backend's own default); any other value is sent verbatim.
func effectiveServiceTier(tier string) string {
	if tier == "" || tier == "on-demand" {
		return ""
	}
	return tier
}
