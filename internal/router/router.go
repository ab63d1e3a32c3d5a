package router

import (
	"net/http"

	"catalog-proxy-api/internal/handler"
	"catalog-proxy-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	CatalogHandler *handler.CatalogHandler
	AdminHandler   *handler.AdminHandler
	LogHandler     *handler.LogHandler
	AdminAuth      func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Proxy endpoints. Paths and response shapes are an external contract,
	// so they live at the root instead of under /api/v1.
	if cfg.CatalogHandler != nil {
		r.Get("/asset-to-bundle/{assetId}", cfg.CatalogHandler.AssetToBundle)
		r.Post("/items/details", cfg.CatalogHandler.ItemDetails)
		r.Get("/rolimons/limited-price/{assetId}", cfg.CatalogHandler.LimitedPrice)
	}

	// Operational endpoints
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		r.Group(func(r chi.Router) {
			if cfg.AdminAuth != nil {
				r.Use(cfg.AdminAuth)
			}

			r.Route("/admin", func(r chi.Router) {
				if cfg.AdminHandler != nil {
					r.Get("/stats", cfg.AdminHandler.GetStats)
				}
				if cfg.LogHandler != nil {
					r.Get("/logs", cfg.LogHandler.GetCallLogs)
				}
			})
		})
	})

	return r
}
