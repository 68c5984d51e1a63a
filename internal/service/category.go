package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository"
)

// CategoryService derives category labels from product records. Nothing is
// cached; every call reads the store.
type CategoryService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(products repository.ProductRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{products: products, logger: logger}
}

// Categories returns every category label, sorted.
func (s *CategoryService) Categories(ctx context.Context) ([]string, error) {
	raw, err := s.products.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return domain.NormalizeCategories(raw), nil
}

// CategoryCounts returns the product count per label, largest first.
func (s *CategoryService) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	raw, err := s.products.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	counts := domain.AggregateCategoryCounts(raw)
	s.logger.DebugContext(ctx, "category counts aggregated",
		slog.Int("raw", len(raw)),
		slog.Int("labels", len(counts)),
	)
	return counts, nil
}
