package server

import "github.com/go-chi/chi/v5"

// SetupRoutes registers the API routes.
func SetupRoutes(router chi.Router, h *Handlers) {
	router.Get("/healthz", h.Health)

	router.Route("/api", func(r chi.Router) {
		r.Get("/filters", h.Filters)
		r.Get("/selection/default", h.DefaultSelection)
		r.Post("/query", h.Query)
		r.Post("/plot.png", h.PlotPNG)
	})
}
