package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PrashansaChaudhary/amasift-compare/internal/service"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/health"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the HTTP layer.
const ServiceName = "compare"

// Services bundles the application services the router exposes.
type Services struct {
	Products    *service.ProductService
	Reviews     *service.ReviewService
	Categories  *service.CategoryService
	Comparisons *service.ComparisonService
}

// RouterConfig holds the edge settings of the router.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all comparison service routes
// registered. ctx bounds the lifetime of the rate limiter's cleanup loop.
func NewRouter(
	ctx context.Context,
	services Services,
	healthHandler *health.Handler,
	registry *prometheus.Registry,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.NewHTTPMetrics(registry, ServiceName).Handler)
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	comparisonHandler := NewComparisonHandler(services.Comparisons, logger)
	reviewHandler := NewReviewHandler(services.Reviews, logger)
	categoryHandler := NewCategoryHandler(services.Categories, logger)
	productHandler := NewProductHandler(services.Products, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/compare", func(r chi.Router) {
			r.With(
				middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger),
				LimitBody,
			).Post("/", comparisonHandler.Compare)
			r.Get("/history", comparisonHandler.History)
		})

		r.Get("/categories", categoryHandler.ListCategories)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/product/{productId}", reviewHandler.ListReviews)
			r.Get("/stats/{productId}", reviewHandler.Statistics)
			r.Get("/sentiment/{productId}", reviewHandler.Sentiment)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/deals", productHandler.ListDeals)
			r.Get("/{productId}", productHandler.GetProduct)
		})
	})

	return r
}
