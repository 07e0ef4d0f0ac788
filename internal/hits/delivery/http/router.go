package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// HitEventRoute receives collected hits from the Dapr sidecar.
const HitEventRoute = "/events/hit"

// Subscription names the Dapr pub/sub component and topic to subscribe to.
type Subscription struct {
	PubsubName string
	Topic      string
}

func NewRouter(handler *Handler, logger *zap.Logger, sub Subscription) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	r.Get("/readyz", handler.Readyz)

	// Dapr subscription endpoint
	r.Get("/dapr/subscribe", func(w http.ResponseWriter, r *http.Request) {
		subscriptions := []map[string]string{
			{
				"pubsubname": sub.PubsubName,
				"topic":      sub.Topic,
				"route":      HitEventRoute,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(subscriptions)
	})

	r.Post(HitEventRoute, handler.HandleHitEvent)

	r.Get("/hits/{tid}", handler.ListHits)
	r.Get("/hits/{tid}/summary", handler.GetSummary)

	return r
}
