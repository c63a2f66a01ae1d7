// Package httptransport wires the HTTP surface: middleware stack, CORS,
// health probes, metrics, and the authenticated clearance API.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fiscalia/internal/clearance/handler"
	"fiscalia/internal/platform/config"
	"fiscalia/internal/platform/health"
	"fiscalia/internal/platform/middleware"
)

// NewRouter assembles the full route tree. Health and metrics stay outside
// the authenticated /api subtree; every clearance route requires a verified
// actor, and mutations are additionally role gated.
func NewRouter(cfg config.Server, clearances *handler.Handler, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireActor(cfg.JWTSigningKey, logger))

		clearances.RegisterReads(api)

		api.Group(func(writes chi.Router) {
			writes.Use(middleware.RequireRole(logger, middleware.RoleAdmin, middleware.RoleClerk))
			clearances.RegisterWrites(writes)
		})
		api.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(logger, middleware.RoleAdmin))
			clearances.RegisterAdmin(admin)
		})
	})

	return r
}
