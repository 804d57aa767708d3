package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wxyClark/LaravelX-AI/internal/middleware"
)

// RouterConfig holds everything the router mounts
type RouterConfig struct {
	Auth          *AuthHandler
	Authenticator middleware.Authenticator
	RateLimiter   *middleware.RateLimiter // Optional: nil disables throttling
	Metrics       http.Handler            // Optional: nil leaves /metrics unmounted
	CORSOrigins   []string
}

// NewRouter builds the HTTP surface of the auth gateway
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	protected := middleware.Auth(cfg.Authenticator)

	r.Route("/auth", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(middleware.RateLimit(cfg.RateLimiter))
		}

		r.Post("/login", cfg.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(protected)
			r.Get("/verify", cfg.Auth.Verify)
			r.Post("/refresh", cfg.Auth.Refresh)
			r.Post("/logout", cfg.Auth.Logout)
		})
	})

	r.With(protected).Get("/user", cfg.Auth.Me)

	return middleware.Chain(
		r,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.CORSOrigins),
	)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
