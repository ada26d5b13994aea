package main

import (
	"context"
	"fmt"

	"github.com/julianopadua/documentation-helper/internal/config"
	"github.com/julianopadua/documentation-helper/internal/docgen"
)

// buildBackend constructs the BackendClient named by cfg.LLM.Provider. Groq
// (and any other OpenAI-wire-compatible deployment) goes over the shared
// raw-HTTP client so the Rate Limiter keeps synchronous header access;
// "openai", "anthropic", and "gemini" wrap their own SDKs.
func buildBackend(ctx context.Context, cfg *config.Config) (docgen.BackendClient, error) {
	maxTokens := cfg.LLM.MaxCompletionTokens

	switch cfg.LLM.Provider {
	case "", "groq":
		return docgen.NewHTTPBackendClient(cfg.LLM.BaseURL, cfg.LLM.APIKeyFallback), nil
	case "openai":
		return docgen.NewOpenAIBackendClient(cfg.LLM.BaseURL, cfg.LLM.APIKeyFallback), nil
	case "anthropic":
		return docgen.NewAnthropicBackendClient(cfg.LLM.APIKeyFallback, cfg.LLM.Routing.PreferredModels, int64(maxTokens), logger), nil
	case "gemini":
		return docgen.NewGeminiBackendClient(ctx, cfg.LLM.APIKeyFallback, cfg.LLM.Routing.PreferredModels, int32(maxTokens), logger)
	default:
		return nil, fmt.Errorf("unknown llm.provider %q", cfg.LLM.Provider)
	}
}
