package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the gateway routing table.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(CorrelationID)
	r.Use(Metrics)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/notifications/", h.CreateNotification)
		r.Get("/notifications/{id}/status", h.GetStatus)
		r.Post("/users/", h.CreateUser)
		// Worker status callbacks (email/push services).
		r.Post("/{channel:email|push}/status/", h.UpdateStatus)
	})

	return r
}
