package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository"
	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/tracing"
)

// Comparison outcomes recorded in comparisons_total.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "store_unavailable"
	OutcomeError       = "error"
)

const tracerName = "github.com/PrashansaChaudhary/amasift-compare/internal/service"

// ComparisonEvents announces created comparisons.
type ComparisonEvents interface {
	PublishComparisonCreated(ctx context.Context, historyID string, requested []string, result *domain.ComparisonResult) error
}

// CompareInput is a comparison request.
type CompareInput struct {
	ProductIDs []string
	SessionID  string
}

type comparisonMetrics struct {
	total    *prometheus.CounterVec
	products prometheus.Histogram
}

func newComparisonMetrics(reg prometheus.Registerer) comparisonMetrics {
	factory := promauto.With(reg)
	return comparisonMetrics{
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "comparisons_total",
			Help: "Product comparison requests by outcome.",
		}, []string{"outcome"}),
		products: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "comparison_products",
			Help:    "Number of products resolved per successful comparison.",
			Buckets: []float64{2, 3, 4, 5, 6, 8, 10, 15, 20},
		}),
	}
}

// ComparisonService builds comparisons and records them in the session history.
type ComparisonService struct {
	products          repository.ProductRepository
	reviews           *ReviewService
	history           repository.HistoryRepository
	events            ComparisonEvents
	metrics           comparisonMetrics
	logger            *slog.Logger
	reviewsPerProduct int

	newID func() string
	now   func() time.Time
}

// NewComparisonService creates a new comparison service. reg may be nil, in
// which case metrics are not registered anywhere.
func NewComparisonService(
	products repository.ProductRepository,
	reviews *ReviewService,
	history repository.HistoryRepository,
	events ComparisonEvents,
	reg prometheus.Registerer,
	logger *slog.Logger,
	reviewsPerProduct int,
) *ComparisonService {
	if reviewsPerProduct <= 0 {
		reviewsPerProduct = DefaultReviewsPerProduct
	}
	return &ComparisonService{
		products:          products,
		reviews:           reviews,
		history:           history,
		events:            events,
		metrics:           newComparisonMetrics(reg),
		logger:            logger,
		reviewsPerProduct: reviewsPerProduct,
		newID:             uuid.NewString,
		now:               time.Now,
	}
}

// Compare resolves the requested products, attaches their most helpful
// reviews, determines the winner per metric and appends the request to the
// session history. A session id is generated when none is given.
func (s *ComparisonService) Compare(ctx context.Context, in CompareInput) (result *domain.ComparisonResult, err error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "ComparisonService.Compare")
	defer func() {
		o := outcome(err)
		s.metrics.total.WithLabelValues(o).Inc()
		span.SetAttributes(attribute.String("compare.outcome", o))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ids := domain.DistinctProductIDs(in.ProductIDs)
	span.SetAttributes(attribute.Int("compare.requested", len(ids)))
	if len(ids) < domain.MinCompareProducts {
		return nil, apperrors.InvalidInput("at least two distinct product ids are required for comparison")
	}

	var (
		found   []domain.Product
		grouped map[string][]domain.Review
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		found, err = s.products.GetByIDs(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		grouped, err = s.reviews.GroupByProduct(gctx, ids, s.reviewsPerProduct)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare products: %w", err)
	}

	compared := inRequestOrder(ids, found, grouped)
	if len(compared) < domain.MinCompareProducts {
		return nil, apperrors.NotFoundMessage("no products found for the given ids")
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}

	result = &domain.ComparisonResult{
		Products:   compared,
		Comparison: domain.ComputeMetrics(compared),
		SessionID:  sessionID,
	}

	entry := domain.NewHistoryEntry(s.newID(), sessionID, in.ProductIDs, s.now())
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("record comparison: %w", err)
	}

	if err := s.events.PublishComparisonCreated(ctx, entry.ID, in.ProductIDs, result); err != nil {
		s.logger.WarnContext(ctx, "failed to publish comparison event",
			slog.String("history_id", entry.ID),
			slog.String("error", err.Error()),
		)
	}

	s.metrics.products.Observe(float64(len(compared)))
	s.logger.InfoContext(ctx, "comparison created",
		slog.String("session_id", sessionID),
		slog.String("history_id", entry.ID),
		slog.Int("requested", len(ids)),
		slog.Int("resolved", len(compared)),
	)
	return result, nil
}

// History returns the comparisons of a session, newest first.
func (s *ComparisonService) History(ctx context.Context, sessionID string, limit int) ([]domain.HistoryEntry, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}

	entries, err := s.history.ListBySession(ctx, sessionID, domain.ClampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list comparison history: %w", err)
	}
	return entries, nil
}

// inRequestOrder drops unknown ids and orders the products as requested.
func inRequestOrder(ids []string, found []domain.Product, grouped map[string][]domain.Review) []domain.ComparedProduct {
	byID := make(map[string]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	compared := make([]domain.ComparedProduct, 0, len(found))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		reviews := grouped[id]
		if reviews == nil {
			reviews = []domain.Review{}
		}
		compared = append(compared, domain.ComparedProduct{Product: p, Reviews: reviews})
	}
	return compared
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, apperrors.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, apperrors.ErrNotFound):
		return OutcomeNotFound
	case apperrors.IsStoreUnavailable(err):
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}
