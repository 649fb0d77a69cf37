package services

import (
	"context"
	"sync"

	"finnkey-backend/internal/config"
)

type stubModelClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	lastReq CompletionRequest
	hadDL   bool
}

func (s *stubModelClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastReq = req
	_, s.hadDL = ctx.Deadline()
	return s.reply, s.err
}

func testRelayConfig() RelayConfig {
	return RelayConfig{
		TextModel:    "text-model",
		VisionModel:  "vision-model",
		Prompts:      config.DefaultPrompts(),
		HistoryLimit: 20,
	}
}

func strPtr(s string) *string { return &s }
