package services

import (
	"context"
	"fmt"

	"finnkey-backend/internal/config"
)

// NewModelClient builds the upstream client for the configured provider. The
// returned cleanup func must be called on shutdown.
func NewModelClient(ctx context.Context, cfg *config.Config) (ModelClient, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client, err := NewOpenAIClient(OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.UpstreamTimeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported provider %q", cfg.LLMProvider)
	}
}
