// Package guarded wraps repositories with a store circuit breaker. While the
// breaker is open, calls fail with a store-unavailable error without
// touching the store.
package guarded

import (
	"context"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/breaker"
)

// ProductRepository guards a repository.ProductRepository.
type ProductRepository struct {
	next repository.ProductRepository
	cb   *breaker.Breaker
}

// NewProductRepository wraps next with cb.
func NewProductRepository(next repository.ProductRepository, cb *breaker.Breaker) *ProductRepository {
	return &ProductRepository{next: next, cb: cb}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return breaker.Do(ctx, r.cb, "get product", func(ctx context.Context) (*domain.Product, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return breaker.Do(ctx, r.cb, "get products", func(ctx context.Context) ([]domain.Product, error) {
		return r.next.GetByIDs(ctx, ids)
	})
}

func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return breaker.Do(ctx, r.cb, "list products", func(ctx context.Context) ([]domain.Product, error) {
		return r.next.List(ctx, filter)
	})
}

func (r *ProductRepository) TopDiscounted(ctx context.Context, limit int) ([]domain.Deal, error) {
	return breaker.Do(ctx, r.cb, "list deals", func(ctx context.Context) ([]domain.Deal, error) {
		return r.next.TopDiscounted(ctx, limit)
	})
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	return breaker.Do(ctx, r.cb, "list categories", r.next.Categories)
}

func (r *ProductRepository) CategoryCounts(ctx context.Context) ([]domain.RawCategoryCount, error) {
	return breaker.Do(ctx, r.cb, "count categories", r.next.CategoryCounts)
}

// ReviewRepository guards a repository.ReviewRepository.
type ReviewRepository struct {
	next repository.ReviewRepository
	cb   *breaker.Breaker
}

// NewReviewRepository wraps next with cb.
func NewReviewRepository(next repository.ReviewRepository, cb *breaker.Breaker) *ReviewRepository {
	return &ReviewRepository{next: next, cb: cb}
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Review, error) {
	return breaker.Do(ctx, r.cb, "list reviews", func(ctx context.Context) ([]domain.Review, error) {
		return r.next.ListByProduct(ctx, productID, limit, offset)
	})
}

func (r *ReviewRepository) ListAllByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return breaker.Do(ctx, r.cb, "list product reviews", func(ctx context.Context) ([]domain.Review, error) {
		return r.next.ListAllByProduct(ctx, productID)
	})
}

func (r *ReviewRepository) ListByProducts(ctx context.Context, productIDs []string, limitPerProduct int) ([]domain.Review, error) {
	return breaker.Do(ctx, r.cb, "list reviews for products", func(ctx context.Context) ([]domain.Review, error) {
		return r.next.ListByProducts(ctx, productIDs, limitPerProduct)
	})
}

// HistoryRepository guards a repository.HistoryRepository.
type HistoryRepository struct {
	next repository.HistoryRepository
	cb   *breaker.Breaker
}

// NewHistoryRepository wraps next with cb.
func NewHistoryRepository(next repository.HistoryRepository, cb *breaker.Breaker) *HistoryRepository {
	return &HistoryRepository{next: next, cb: cb}
}

func (r *HistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	return breaker.Exec(ctx, r.cb, "append history", func(ctx context.Context) error {
		return r.next.Append(ctx, entry)
	})
}

func (r *HistoryRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.HistoryEntry, error) {
	return breaker.Do(ctx, r.cb, "list history", func(ctx context.Context) ([]domain.HistoryEntry, error) {
		return r.next.ListBySession(ctx, sessionID, limit)
	})
}

var (
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.ReviewRepository  = (*ReviewRepository)(nil)
	_ repository.HistoryRepository = (*HistoryRepository)(nil)
)
