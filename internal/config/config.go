package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var defaultModels = map[string]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGemini: "gemini-2.0-flash",
}

type Config struct {
	// Server
	Port string
	Env  string

	// Upstream model provider
	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	TextModel     string
	VisionModel   string

	UpstreamTimeoutSeconds int

	// Relays
	ChatHistoryLimit int
	MaxUploadMB      int
	PromptsFile      string
	IndexFile        string

	// HTTP edge
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	RedisURL           string
	// TrustProxyHeaders lets X-Forwarded-For/X-Real-IP replace the socket
	// address. Only enable behind a proxy that overwrites them.
	TrustProxyHeaders bool

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads the process environment (and .env when present). It panics when
// the selected provider has no credential, so a misconfigured process never
// starts listening.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI))

	cfg := &Config{
		Port:                   getEnvOrDefault("PORT", "8000"),
		Env:                    getEnvOrDefault("ENV", "development"),
		LLMProvider:            provider,
		OpenAIBaseURL:          getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		UpstreamTimeoutSeconds: getEnvAsIntOrDefault("UPSTREAM_TIMEOUT_SECONDS", 60),
		ChatHistoryLimit:       getEnvAsIntOrDefault("CHAT_HISTORY_LIMIT", 20),
		MaxUploadMB:            getEnvAsIntOrDefault("MAX_UPLOAD_MB", 20),
		PromptsFile:            getEnvOrDefault("PROMPTS_FILE", ""),
		IndexFile:              getEnvOrDefault("INDEX_FILE", "web/index.html"),
		CORSAllowedOrigins:     getEnvAsListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute:     getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 30),
		RedisURL:               getEnvOrDefault("REDIS_URL", ""),
		TrustProxyHeaders:      getEnvAsBoolOrDefault("TRUST_PROXY_HEADERS", false),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:                getEnvOrDefault("LOG_FILE", ""),
	}

	switch provider {
	case ProviderOpenAI:
		cfg.OpenAIAPIKey = mustGetEnv("OPENAI_API_KEY")
	case ProviderGemini:
		cfg.GeminiAPIKey = mustGetEnv("GEMINI_API_KEY")
	default:
		panic(fmt.Sprintf("unsupported LLM_PROVIDER %q (want %q or %q)", provider, ProviderOpenAI, ProviderGemini))
	}

	cfg.TextModel = getEnvOrDefault("TEXT_MODEL", defaultModels[provider])
	cfg.VisionModel = getEnvOrDefault("VISION_MODEL", defaultModels[provider])

	if cfg.UpstreamTimeoutSeconds <= 0 {
		cfg.UpstreamTimeoutSeconds = 60
	}
	if cfg.ChatHistoryLimit < 1 {
		cfg.ChatHistoryLimit = 20
	}
	if cfg.MaxUploadMB < 1 {
		cfg.MaxUploadMB = 20
	}
	if cfg.RateLimitPerMinute < 0 {
		cfg.RateLimitPerMinute = 0
	}

	return cfg
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func mustGetEnv(key string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return defaultVal
	}
	var out []string
	for _, p := range strings.Split(val, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
