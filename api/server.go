// ABOUTME: Huma API server configuration and setup
// ABOUTME: Provides OpenAPI documentation and request/response validation

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"diagnostic-report-api/api/handlers"
	"diagnostic-report-api/api/middleware"
	"diagnostic-report-api/core/interfaces"
)

const (
	apiTitle       = "Diagnostic Report API"
	apiVersion     = "1.0.0"
	apiDescription = "Decodes dual-channel assistant messages, renders diagnostic reports and serves report images"
)

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger interfaces.Logger

	// AllowedOrigins defaults to "*"
	AllowedOrigins []string

	// RateLimiter is optional; the caller owns its lifecycle
	RateLimiter *middleware.RateLimiter
}

// Handlers groups the route handlers mounted by RegisterRoutes
type Handlers struct {
	Assets      *handlers.AssetHandler
	Messages    *handlers.MessageHandler
	Diagnostics *handlers.DiagnosticsHandler
}

// NewAPI creates and configures a new Huma API instance
func NewAPI() (huma.API, chi.Router) {
	return NewAPIWithMiddleware(APIConfig{})
}

// NewAPIWithMiddleware creates a new API with middleware configured
func NewAPIWithMiddleware(cfg APIConfig) (huma.API, chi.Router) {
	router := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// CORS goes first so preflight requests skip logging and limits
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}

	if cfg.RateLimiter != nil {
		router.Use(middleware.RateLimitMiddleware(cfg.RateLimiter))
	}

	config := huma.DefaultConfig(apiTitle, apiVersion)
	config.Info.Description = apiDescription

	// The OpenAPI document is served at /openapi.json and the docs UI at /docs
	api := humachi.New(router, config)

	return api, router
}

// RegisterRoutes mounts every handler. Nil handlers are skipped.
func RegisterRoutes(api huma.API, router chi.Router, h Handlers) {
	handlers.HealthHandler{}.RegisterRoutes(api)

	if h.Assets != nil {
		h.Assets.RegisterRoutes(api)
		h.Assets.RegisterPathRoute(router)
	}
	if h.Messages != nil {
		h.Messages.RegisterRoutes(api)
	}
	if h.Diagnostics != nil {
		h.Diagnostics.RegisterRoutes(api)
	}
}
