// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/knowron/foss-api/cmd/extraction-api/handlers"
	"github.com/knowron/foss-api/cmd/extraction-api/middleware"
	"github.com/knowron/foss-api/internal/config"
	"github.com/knowron/foss-api/internal/extract"
	"github.com/knowron/foss-api/internal/observability"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, svc *extract.Service, envelopes *extract.EnvelopeBuilder) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	healthHandler := handlers.NewHealthHandler(cfg.Observability.ServiceName, cfg.Extraction.Version)
	extractHandler := handlers.NewExtractHandler(logger, svc, envelopes)

	// Health probes (unauthenticated)
	r.Get("/", healthHandler.Status)
	r.Get("/healthcheck", healthHandler.Status)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Enabled: cfg.Auth.Enabled,
			APIKey:  cfg.Auth.APIKey,
		}, envelopes))

		r.Post("/extract", extractHandler.Extract)
	})

	return r
}
