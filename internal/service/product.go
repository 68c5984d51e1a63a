package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository"
)

// Product listing defaults.
const (
	DefaultProductLimit = 100
	MaxProductLimit     = 100
	DefaultDealsLimit   = 10
	DetailReviewLimit   = 10
)

// ProductService implements catalog browsing.
type ProductService struct {
	products repository.ProductRepository
	reviews  *ReviewService
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, reviews *ReviewService, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		reviews:  reviews,
		logger:   logger,
	}
}

// ListProducts returns products matching the filter.
func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultProductLimit
	}
	filter.Limit = min(filter.Limit, MaxProductLimit)
	filter.Offset = max(filter.Offset, 0)

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return []domain.Product{}, nil
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Deals returns the most discounted products.
func (s *ProductService) Deals(ctx context.Context, limit int) ([]domain.Deal, error) {
	if limit <= 0 {
		limit = DefaultDealsLimit
	}
	limit = min(limit, MaxProductLimit)

	deals, err := s.products.TopDiscounted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	return deals, nil
}

// GetProduct returns a product, optionally with its most helpful reviews and
// review statistics.
func (s *ProductService) GetProduct(ctx context.Context, id string, withReviews bool) (*domain.ProductDetail, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	detail := &domain.ProductDetail{Product: *p}
	if !withReviews {
		return detail, nil
	}

	detail.Reviews, err = s.reviews.ListReviews(ctx, id, DetailReviewLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	detail.ReviewStats, err = s.reviews.summarize(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	s.logger.DebugContext(ctx, "product detail loaded",
		slog.String("product_id", id),
		slog.Int("reviews", len(detail.Reviews)),
	)
	return detail, nil
}
