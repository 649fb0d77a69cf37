package services

import (
	"time"

	"finnkey-backend/internal/config"
)

const (
	chatMaxTokens  = 800
	photoMaxTokens = 900

	defaultHistoryLimit = 20
)

// RelayConfig is everything a relay needs besides the upstream client.
type RelayConfig struct {
	TextModel    string
	VisionModel  string
	Prompts      config.Prompts
	HistoryLimit int
	Timeout      time.Duration
}

// NewRelayConfig assembles a RelayConfig from process configuration.
func NewRelayConfig(cfg *config.Config, prompts config.Prompts) RelayConfig {
	return RelayConfig{
		TextModel:    cfg.TextModel,
		VisionModel:  cfg.VisionModel,
		Prompts:      prompts,
		HistoryLimit: cfg.ChatHistoryLimit,
		Timeout:      cfg.UpstreamTimeout(),
	}
}
