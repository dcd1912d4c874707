// Package api provides the HTTP API for AirSight.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/catalog"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Warehouse   handler.Pinger
	Cache       handler.Pinger
	Metadata    handler.MetadataSource
	Catalog     []catalog.Pollutant
	Pipeline    handler.DashboardRunner
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airsight-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Unmatched routes get a Problem+JSON 404 like every other error
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "resource not found")
	})

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Warehouse, cfg.Cache)
	metadataHandler := handler.NewMetadataHandler(cfg.Metadata, cfg.Catalog, cfg.Logger)
	dashboardHandler := handler.NewDashboardHandler(cfg.Pipeline, cfg.Logger)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Metadata endpoints - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/dates", metadataHandler.ListDates)
			r.Get("/pollutants", metadataHandler.ListPollutants)
		})

		// Dashboard endpoint - expensive warehouse reads, strict rate limiting
		r.With(expensiveRateLimit).Get("/dashboard", dashboardHandler.GetDashboard)
	})

	return r
}
