package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/internal/service"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/httputil"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
// @Summary List products
// @Description Lists products with optional filters, best rated first
// @Tags products
// @Produce json
// @Param category query string false "Category substring"
// @Param search query string false "Search in title, brand and category"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param min_rating query number false "Minimum rating"
// @Param limit query int false "Items per page (max 100)" default(100)
// @Param offset query int false "Items to skip" default(0)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params, ok := httputil.QueryPage(w, r, service.DefaultProductLimit)
	if !ok {
		return
	}

	filter := domain.ProductFilter{
		Category: optionalString(q.Get("category")),
		Search:   optionalString(q.Get("search")),
		Limit:    params.Limit,
		Offset:   params.Offset,
	}

	if filter.MinPrice, ok = httputil.QueryFloat(w, r, "min_price"); !ok {
		return
	}
	if filter.MaxPrice, ok = httputil.QueryFloat(w, r, "max_price"); !ok {
		return
	}
	if filter.MinRating, ok = httputil.QueryFloat(w, r, "min_rating"); !ok {
		return
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"data":   products,
		"limit":  params.Limit,
		"offset": params.Offset,
	})
}

// ListDeals handles GET /api/v1/products/deals
// @Summary Top deals
// @Description Returns the most discounted products
// @Tags products
// @Produce json
// @Param limit query int false "Maximum items (max 100)" default(10)
// @Success 200 {object} httputil.Response
// @Failure 400 {object} httputil.Response
// @Router /api/v1/products/deals [get]
func (h *ProductHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	params, ok := httputil.QueryPage(w, r, service.DefaultDealsLimit)
	if !ok {
		return
	}

	deals, err := h.service.Deals(r.Context(), params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: deals})
}

// GetProduct handles GET /api/v1/products/{productId}
// @Summary Get a product
// @Description Returns a product, optionally with its most helpful reviews and review statistics
// @Tags products
// @Produce json
// @Param productId path string true "Product identifier"
// @Param with_reviews query bool false "Attach reviews and statistics"
// @Success 200 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/products/{productId} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	withReviews, ok := httputil.QueryBool(w, r, "with_reviews")
	if !ok {
		return
	}

	detail, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "productId"), withReviews)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
