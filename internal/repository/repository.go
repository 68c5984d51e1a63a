package repository

import (
	"context"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
)

// ProductRepository reads the product catalog.
type ProductRepository interface {
	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetByIDs returns the products that exist among ids, in no particular
	// order. Unknown ids are omitted.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// List returns products matching the filter, best rated first.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)

	// TopDiscounted returns the products with the largest discount.
	TopDiscounted(ctx context.Context, limit int) ([]domain.Deal, error)

	// Categories returns every distinct non-empty raw category string.
	Categories(ctx context.Context) ([]string, error)

	// CategoryCounts returns the number of products per raw category string.
	CategoryCounts(ctx context.Context) ([]domain.RawCategoryCount, error)
}

// ReviewRepository reads product reviews.
type ReviewRepository interface {
	// ListByProduct returns a page of reviews for a product in helpfulness
	// order.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Review, error)

	// ListAllByProduct returns every review of a product.
	ListAllByProduct(ctx context.Context, productID string) ([]domain.Review, error)

	// ListByProducts returns up to limitPerProduct of the most helpful
	// reviews of each product.
	ListByProducts(ctx context.Context, productIDs []string, limitPerProduct int) ([]domain.Review, error)
}

// HistoryRepository stores comparison history.
type HistoryRepository interface {
	// Append records an entry. It never updates existing entries.
	Append(ctx context.Context, entry domain.HistoryEntry) error

	// ListBySession returns up to limit entries of a session, newest first.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.HistoryEntry, error)
}

// CatalogWriter loads products and reviews in bulk.
type CatalogWriter interface {
	// UpsertProduct inserts a product or overwrites the stored one.
	UpsertProduct(ctx context.Context, p *domain.Product) error

	// InsertReview adds a review and returns its generated identifier.
	InsertReview(ctx context.Context, r *domain.Review) (int64, error)
}
