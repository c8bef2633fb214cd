package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// catalogMaxAge is how long clients may cache catalog listings.
const catalogMaxAge = 5 * time.Minute

// defaultRequestTimeout applies when RouterConfig.RequestTimeout is zero.
const defaultRequestTimeout = 10 * time.Second

// RouterConfig carries the optional knobs of the router.
type RouterConfig struct {
	PprofCIDRs []string
	CORS       middleware.CORSConfig

	// RequestTimeout answers 504 once a request runs this long. It must be
	// shorter than the server's WriteTimeout for the 504 to reach the client.
	RequestTimeout time.Duration
}

func (c RouterConfig) requestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}
	return c.RequestTimeout
}

// NewRouter creates a chi router with the storefront pages, the JSON API and
// the operational endpoints registered.
func NewRouter(
	storefront *StorefrontHandler,
	api *APIHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.requestTimeout()))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	// Server-rendered storefront
	r.Group(func(r chi.Router) {
		r.Use(middleware.CacheControl(0))

		r.Get("/", storefront.Products)
		r.Get("/cart", storefront.Cart)
		r.Post("/cart/items", storefront.AddItem)
		r.Post("/cart/items/{productId}/quantity", storefront.AdjustQuantity)
		r.Post("/cart/items/{productId}/remove", storefront.RemoveItem)
	})

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS))
		r.Use(ContentTypeJSON)

		r.With(middleware.CacheControl(catalogMaxAge)).Get("/products", api.ListProducts)
		r.With(middleware.CacheControl(catalogMaxAge)).Get("/categories", api.ListCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CacheControl(0))

			r.Get("/", api.GetCart)
			r.Post("/items", api.AddItem)
			r.Patch("/items/{productId}", api.AdjustQuantity)
			r.Delete("/items/{productId}", api.RemoveItem)
		})
	})

	return r
}
