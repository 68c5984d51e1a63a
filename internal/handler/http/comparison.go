package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/internal/service"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/httputil"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/middleware"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/validator"
)

// ComparisonHandler handles HTTP requests for comparison endpoints.
type ComparisonHandler struct {
	service *service.ComparisonService
	logger  *slog.Logger
}

// NewComparisonHandler creates a new comparison HTTP handler.
func NewComparisonHandler(svc *service.ComparisonService, logger *slog.Logger) *ComparisonHandler {
	return &ComparisonHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CompareRequest is the JSON request body for a comparison.
type CompareRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=2,max=50,dive,max=64"`
	SessionID  string   `json:"session_id" validate:"max=128"`
}

// --- Handlers ---

// Compare handles POST /api/v1/compare
// @Summary Compare products
// @Description Compares two or more products and records the request in the session history
// @Tags compare
// @Accept json
// @Produce json
// @Param request body CompareRequest true "Products to compare"
// @Success 200 {object} httputil.Response
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Failure 503 {object} httputil.Response
// @Router /api/v1/compare [post]
func (h *ComparisonHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = strings.TrimSpace(r.Header.Get(middleware.HeaderSessionID))
	}

	result, err := h.service.Compare(r.Context(), service.CompareInput{
		ProductIDs: req.ProductIDs,
		SessionID:  sessionID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set(middleware.HeaderSessionID, result.SessionID)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// History handles GET /api/v1/compare/history
// @Summary Comparison history
// @Description Returns the comparisons of a session, newest first
// @Tags compare
// @Produce json
// @Param session_id query string true "Session identifier"
// @Param limit query int false "Maximum entries (max 100)" default(10)
// @Success 200 {object} httputil.Response
// @Failure 400 {object} httputil.Response
// @Router /api/v1/compare/history [get]
func (h *ComparisonHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = r.Header.Get(middleware.HeaderSessionID)
	}

	limit, ok := httputil.QueryInt(w, r, "limit", domain.DefaultHistoryLimit)
	if !ok {
		return
	}

	entries, err := h.service.History(r.Context(), sessionID, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: entries})
}
