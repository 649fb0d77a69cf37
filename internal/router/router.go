package router

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"finnkey-backend/internal/handlers"
	"finnkey-backend/internal/middleware"
	"finnkey-backend/internal/models"
)

// New wires the HTTP surface. A nil limiter disables rate limiting. Forwarding
// headers only replace the client address when trustProxyHeaders is set.
func New(
	chatHandler *handlers.ChatHandler,
	photoHandler *handlers.PhotoHandler,
	homeHandler *handlers.HomeHandler,
	limiter *middleware.RateLimiter,
	corsOrigins []string,
	trustProxyHeaders bool,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	if trustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(corsOrigins))

	r.Get("/", homeHandler.Index)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.HealthResponse{Status: "ok"})
	})

	// ──── Model relays ────
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/chat", chatHandler.Chat)
		r.Post("/photo-finnkey", photoHandler.Analyze)
	})

	return r
}
