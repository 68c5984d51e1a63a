package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PrashansaChaudhary/amasift-compare/internal/service"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/httputil"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// ListReviews handles GET /api/v1/reviews/product/{productId}
// @Summary List product reviews
// @Description Returns a page of reviews for a product, most helpful first
// @Tags reviews
// @Produce json
// @Param productId path string true "Product identifier"
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param offset query int false "Items to skip" default(0)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/reviews/product/{productId} [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	params, ok := httputil.QueryPage(w, r, service.DefaultReviewLimit)
	if !ok {
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), productID, params.Limit, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"data":   reviews,
		"limit":  params.Limit,
		"offset": params.Offset,
	})
}

// Statistics handles GET /api/v1/reviews/stats/{productId}
// @Summary Review statistics
// @Description Returns rating statistics for a product
// @Tags reviews
// @Produce json
// @Param productId path string true "Product identifier"
// @Success 200 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/reviews/stats/{productId} [get]
func (h *ReviewHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// Sentiment handles GET /api/v1/reviews/sentiment/{productId}
// @Summary Review sentiment
// @Description Buckets a product's reviews by sentiment score
// @Tags reviews
// @Produce json
// @Param productId path string true "Product identifier"
// @Success 200 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/reviews/sentiment/{productId} [get]
func (h *ReviewHandler) Sentiment(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Sentiment(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}
