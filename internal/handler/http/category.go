package http

import (
	"log/slog"
	"net/http"

	"github.com/PrashansaChaudhary/amasift-compare/internal/service"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/httputil"
)

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		logger:  logger,
	}
}

// ListCategories handles GET /api/v1/categories
// @Summary List categories
// @Description Returns category labels, or labels with product counts when with_count is set
// @Tags categories
// @Produce json
// @Param with_count query bool false "Include product counts"
// @Success 200 {object} httputil.Response
// @Router /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	withCount, ok := httputil.QueryBool(w, r, "with_count")
	if !ok {
		return
	}

	if withCount {
		counts, err := h.service.CategoryCounts(r.Context())
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: counts})
		return
	}

	labels, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: labels})
}
