package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter creates the collector router. Probes and metrics bypass the rate
// limiter; metricsHandler may be nil.
func NewRouter(handler *Handler, logger *zap.Logger, rateLimiter *RateLimiter, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	r.Get("/readyz", handler.Readyz)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		// Every method reaches Collect so it can answer 405 with CORS headers.
		// Options is registered after it to take precedence.
		r.HandleFunc("/collect", handler.Collect)
		r.Options("/collect", handler.Preflight)
	})

	return r
}
