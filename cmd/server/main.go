package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"finnkey-backend/internal/config"
	"finnkey-backend/internal/database"
	"finnkey-backend/internal/handlers"
	"finnkey-backend/internal/logging"
	"finnkey-backend/internal/middleware"
	"finnkey-backend/internal/router"
	"finnkey-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	// ──── Step 2: Initialize Logging ────
	logger, err := logging.Init(cfg)
	if err != nil {
		logger.Warn("log file unavailable, falling back to stdout", "path", cfg.LogFile, "error", err)
	}
	logger.Info("starting ISG Finn Key backend", "provider", cfg.LLMProvider)

	// ──── Step 3: Load Prompts ────
	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		fatal(logger, "prompt loading failed", err)
	}
	logger.Info("prompts loaded", "file", cfg.PromptsFile)

	// ──── Step 4: Initialize Model Client ────
	client, closeClient, err := services.NewModelClient(context.Background(), cfg)
	if err != nil {
		fatal(logger, "model client initialization failed", err)
	}
	defer closeClient()
	logger.Info("model client initialized", "text_model", cfg.TextModel, "vision_model", cfg.VisionModel)

	// ──── Step 5: Initialize Relays and Handlers ────
	relayCfg := services.NewRelayConfig(cfg, prompts)
	chatHandler := handlers.NewChatHandler(services.NewChatRelay(client, relayCfg))
	photoHandler := handlers.NewPhotoHandler(services.NewPhotoRelay(client, relayCfg), cfg.MaxUploadBytes())
	homeHandler := handlers.NewHomeHandler(cfg.IndexFile)

	// ──── Step 6: Initialize Rate Limiter ────
	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		var store middleware.Store
		if cfg.RedisURL != "" {
			redisClient, err := database.NewRedisClient(cfg.RedisURL)
			if err != nil {
				fatal(logger, "Redis connection failed", err)
			}
			defer redisClient.Close()
			store = middleware.NewRedisStore(redisClient)
			logger.Info("rate limiter backed by Redis", "per_minute", cfg.RateLimitPerMinute)
		} else {
			memStore := middleware.NewMemoryStore(time.Minute)
			defer memStore.Stop()
			store = memStore
			logger.Info("rate limiter backed by memory", "per_minute", cfg.RateLimitPerMinute)
		}
		limiter = middleware.NewRateLimiter(store, cfg.RateLimitPerMinute, time.Minute)
	}

	// ──── Step 7: Start HTTP Server ────
	r := router.New(chatHandler, photoHandler, homeHandler, limiter, cfg.CORSAllowedOrigins, cfg.TrustProxyHeaders, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, server, logger); err != nil {
		fatal(logger, "server stopped with error", err)
	}
}

// serve binds server.Addr, serves until ctx is done and then drains open
// requests for up to 30s. Bind and serve failures are returned.
func serve(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	logger.Info("ISG Finn Key backend ready", "addr", ln.Addr().String())

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
