package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finnkey-backend/internal/config"
	"finnkey-backend/internal/handlers"
	"finnkey-backend/internal/middleware"
	"finnkey-backend/internal/services"
)

type echoClient struct{}

func (echoClient) Complete(ctx context.Context, req services.CompletionRequest) (string, error) {
	return "tamam", nil
}

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter, trustProxyHeaders bool) http.Handler {
	t.Helper()
	index := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(index, []byte("<html></html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	relayCfg := services.RelayConfig{
		TextModel:    "m",
		VisionModel:  "m",
		Prompts:      config.DefaultPrompts(),
		HistoryLimit: 20,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(
		handlers.NewChatHandler(services.NewChatRelay(echoClient{}, relayCfg)),
		handlers.NewPhotoHandler(services.NewPhotoRelay(echoClient{}, relayCfg), 1<<20),
		handlers.NewHomeHandler(index),
		limiter,
		[]string{"*"},
		trustProxyHeaders,
		logger,
	)
}

func TestRouter_Health(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t, nil, false).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func TestRouter_RoutesWired(t *testing.T) {
	h := newTestRouter(t, nil, false)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /: expected %d, got %d", http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"messages":[{"role":"user","content":"selam"}]}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "tamam") {
		t.Fatalf("POST /chat: got %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /chat: expected %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("GET /nope: expected %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://site.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	newTestRouter(t, nil, false).ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS allow-origin header, got %v", rr.Header())
	}
}

func TestRouter_RateLimitsRelaysOnly(t *testing.T) {
	store := middleware.NewMemoryStore(time.Minute)
	defer store.Stop()
	h := newTestRouter(t, middleware.NewRateLimiter(store, 1, time.Minute), false)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"messages":[]}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := post(); code != http.StatusOK {
		t.Fatalf("first request: expected %d, got %d", http.StatusOK, code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected %d, got %d", http.StatusTooManyRequests, code)
	}

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("health should not be limited, got %d", rr.Code)
		}
	}
}

func TestRouter_ForwardedForIgnoredByDefault(t *testing.T) {
	store := middleware.NewMemoryStore(time.Minute)
	defer store.Stop()
	h := newTestRouter(t, middleware.NewRateLimiter(store, 1, time.Minute), false)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"messages":[]}`))
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK {
		t.Fatalf("first request: expected %d, got %v", http.StatusOK, codes)
	}
	for _, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Fatalf("rotating X-Forwarded-For must not reset the budget, got %v", codes)
		}
	}
}

func TestRouter_ForwardedForTrustedBehindProxy(t *testing.T) {
	store := middleware.NewMemoryStore(time.Minute)
	defer store.Stop()
	h := newTestRouter(t, middleware.NewRateLimiter(store, 1, time.Minute), true)

	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"messages":[]}`))
		req.RemoteAddr = "10.0.0.254:443"
		req.Header.Set("X-Forwarded-For", client)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("client %s behind proxy: expected %d, got %d", client, http.StatusOK, rr.Code)
		}
	}
}
