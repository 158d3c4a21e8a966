package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router and registers the API handlers.
func NewRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tryouts", h.ListTryouts)
		r.Get("/tryouts/{id}/calendar", h.TryoutCalendar)
		r.Route("/scheduler", func(r chi.Router) {
			r.Get("/check", h.TriggerCheck)
			r.Get("/status", h.SchedulerStatus)
			r.Get("/history", h.SchedulerHistory)
		})
	})
	r.Get("/healthz", h.Healthz)

	return r
}
