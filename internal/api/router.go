// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package api provides HTTP routing for the monitoring subsystem using the
// Chi router: the WebSocket upgrade endpoint, the REST read surface, and
// the observability endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aryam2121/CoalMine-B/internal/config"
	"github.com/Aryam2121/CoalMine-B/internal/middleware"
)

// Router assembles the HTTP surface.
type Router struct {
	handler  *Handler
	security config.SecurityConfig
}

// NewRouter creates a Router around the given handler.
func NewRouter(handler *Handler, security config.SecurityConfig) *Router {
	return &Router{handler: handler, security: security}
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	// Health endpoint, permissive rate limit for monitoring probes.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, router.security.RateLimitWindow))
		r.Get("/", router.handler.Health)
	})

	// Realtime gateway. Upgrade-rate limiting only; event-rate limiting
	// happens per connection inside the gateway.
	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, router.security.RateLimitWindow))
		r.Get("/", router.handler.WebSocket)
	})

	// REST read surface. Authenticated, instrumented, rate limited.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.security.RateLimitReqs, router.security.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.handler.Authenticate)

		r.Get("/mines/{mineID}/snapshot", router.handler.FacilitySnapshot)
		r.Get("/alerts/unresolved", router.handler.UnresolvedAlerts)
		r.Get("/emergencies/active", router.handler.ActiveEmergencies)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
