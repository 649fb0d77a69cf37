package handlers

import (
	"context"
	"sync"

	"finnkey-backend/internal/config"
	"finnkey-backend/internal/services"
)

type stubModelClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	lastReq services.CompletionRequest
}

func (s *stubModelClient) Complete(ctx context.Context, req services.CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastReq = req
	return s.reply, s.err
}

func testRelayConfig() services.RelayConfig {
	return services.RelayConfig{
		TextModel:    "gpt-4o-mini",
		VisionModel:  "gpt-4o-mini",
		Prompts:      config.DefaultPrompts(),
		HistoryLimit: 20,
	}
}
