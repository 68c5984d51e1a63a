package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository"
)

// Review listing defaults.
const (
	DefaultReviewLimit       = 10
	MaxReviewLimit           = 100
	DefaultReviewsPerProduct = 5
)

// ReviewService aggregates reviews into statistics and sentiment summaries.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		logger:   logger,
	}
}

// ListReviews returns a page of a product's reviews, most helpful first.
func (s *ReviewService) ListReviews(ctx context.Context, productID string, limit, offset int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	limit = min(limit, MaxReviewLimit)
	offset = max(offset, 0)

	reviews, err := s.reviews.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Statistics returns rating statistics for a product. A product without
// reviews gets zero statistics; an unknown product is a not-found error.
func (s *ReviewService) Statistics(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("review statistics: %w", err)
	}
	return s.summarize(ctx, productID)
}

// Sentiment buckets a product's reviews by sentiment score.
func (s *ReviewService) Sentiment(ctx context.Context, productID string) (*domain.SentimentSummary, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("review sentiment: %w", err)
	}

	reviews, err := s.reviews.ListAllByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("review sentiment: %w", err)
	}

	summary := domain.AnalyzeSentiment(reviews)
	s.logger.DebugContext(ctx, "sentiment analyzed",
		slog.String("product_id", productID),
		slog.Int("reviews", len(reviews)),
		slog.Int("positive", summary.PositiveCount),
		slog.Int("negative", summary.NegativeCount),
	)
	return &summary, nil
}

// GroupByProduct returns at most limitPerProduct of the most helpful reviews
// for each product. Every requested product has an entry.
func (s *ReviewService) GroupByProduct(ctx context.Context, productIDs []string, limitPerProduct int) (map[string][]domain.Review, error) {
	if limitPerProduct <= 0 {
		limitPerProduct = DefaultReviewsPerProduct
	}

	reviews, err := s.reviews.ListByProducts(ctx, productIDs, limitPerProduct)
	if err != nil {
		return nil, fmt.Errorf("group reviews: %w", err)
	}
	return domain.GroupReviews(productIDs, reviews, limitPerProduct), nil
}

func (s *ReviewService) summarize(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	reviews, err := s.reviews.ListAllByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("review statistics: %w", err)
	}
	stats := domain.SummarizeReviews(reviews)
	return &stats, nil
}
