/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       The window surfaces load from file:// or a dev server

ROUTE GROUPS:
  /api/persons/*           Donor management and search
  /api/groups/*            Group CRUD for the current year
  /api/commitments/*       Pledge entry and derived views
  /api/collection-days/*   Collection session CRUD
  /api/collections/*       Collected amounts and progress
  /api/announcements/*     Display messaging
  /api/year, /api/admin/*  Season rollover and archive export
  /api/events              SSE push stream for the display window
  /metrics                 Prometheus metrics
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)

		r.Route("/persons", func(r chi.Router) {
			r.Get("/", h.ListPersons)
			r.Post("/", h.UpsertPerson)
			r.Get("/search", h.SearchPersons)
			r.Get("/{id}", h.GetPerson)
			r.Delete("/{id}", h.DeletePerson)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.ListGroups)
			r.Post("/", h.CreateGroup)
			r.Put("/{id}", h.UpdateGroup)
			r.Delete("/{id}", h.DeleteGroup)
		})

		r.Route("/commitments", func(r chi.Router) {
			r.Post("/", h.AddCommitment)
			r.Get("/recent", h.RecentCommitments)
			r.Get("/targets", h.LatestTargets)
		})

		r.Route("/collection-days", func(r chi.Router) {
			r.Get("/", h.ListCollectionDays)
			r.Post("/", h.CreateCollectionDay)
			r.Put("/{id}", h.UpdateCollectionDay)
			r.Delete("/{id}", h.DeleteCollectionDay)
		})

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", h.ListCollections)
			r.Put("/", h.SetCollectionAmount)
			r.Get("/progress", h.ProgressAll)
			r.Get("/progress/{id}", h.PersonProgress)
		})

		r.Route("/announcements", func(r chi.Router) {
			r.Get("/", h.ListAnnouncements)
			r.Get("/active", h.ActiveAnnouncements)
			r.Post("/", h.CreateAnnouncement)
			r.Delete("/{id}", h.DeleteAnnouncement)
		})

		r.Get("/year", h.CurrentYear)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/rollover", h.StartYear)
			r.Post("/archive", h.ArchiveYear)
		})

		r.Get("/events", h.Hub.ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
