package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/database"
	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
)

const productColumns = `product_id, title, brand, category, price, original_price, rating,
		image_url, product_url, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProductByID", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, apperrors.StoreUnavailable("get product", err)
	}
	return p, nil
}

// GetByIDs returns the products among ids that exist.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (_ []domain.Product, err error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE product_id = ANY($1)`

	ctx, end := database.TraceQuery(ctx, "GetProductsByIDs", query)
	defer func() { end(err) }()

	return r.queryProducts(ctx, "get products", query, ids)
}

// List returns products matching the filter ordered by rating, then price.
// A search term matches title, brand or category and takes precedence over
// the category filter.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (_ []domain.Product, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR brand ILIKE $%d OR category ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	} else if filter.Category != nil && *filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Category+"%")
		argIndex++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("rating >= $%d", argIndex))
		args = append(args, *filter.MinRating)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s
		FROM products
		%s
		ORDER BY rating DESC NULLS LAST, price ASC NULLS LAST, product_id
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	return r.queryProducts(ctx, "list products", query, args...)
}

// TopDiscounted returns discounted products, largest discount first.
func (r *ProductRepository) TopDiscounted(ctx context.Context, limit int) (_ []domain.Deal, err error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE original_price > price AND original_price > 0
		ORDER BY (original_price - price) / original_price DESC, product_id
		LIMIT $1`

	ctx, end := database.TraceQuery(ctx, "TopDiscountedProducts", query)
	defer func() { end(err) }()

	products, err := r.queryProducts(ctx, "list deals", query, limit)
	if err != nil {
		return nil, err
	}

	deals := make([]domain.Deal, 0, len(products))
	for _, p := range products {
		deals = append(deals, domain.Deal{Product: p, DiscountPercentage: p.DiscountPercent()})
	}
	return deals, nil
}

// Categories returns the distinct raw category strings.
func (r *ProductRepository) Categories(ctx context.Context) (_ []string, err error) {
	query := `SELECT DISTINCT category
		FROM products
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category`

	ctx, end := database.TraceQuery(ctx, "ListCategories", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.StoreUnavailable("list categories", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, apperrors.StoreUnavailable("scan category row", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("iterate category rows", err)
	}
	return categories, nil
}

// CategoryCounts returns the product count per raw category string.
func (r *ProductRepository) CategoryCounts(ctx context.Context) (_ []domain.RawCategoryCount, err error) {
	query := `SELECT category, COUNT(*) AS product_count
		FROM products
		WHERE category IS NOT NULL AND category <> ''
		GROUP BY category`

	ctx, end := database.TraceQuery(ctx, "CountCategories", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.StoreUnavailable("count categories", err)
	}
	defer rows.Close()

	counts := []domain.RawCategoryCount{}
	for rows.Next() {
		var rc domain.RawCategoryCount
		if err := rows.Scan(&rc.Category, &rc.Count); err != nil {
			return nil, apperrors.StoreUnavailable("scan category count row", err)
		}
		counts = append(counts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("iterate category count rows", err)
	}
	return counts, nil
}

// UpsertProduct inserts a product or replaces the stored fields.
func (r *ProductRepository) UpsertProduct(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (product_id, title, brand, category, price, original_price, rating,
		                      image_url, product_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (product_id) DO UPDATE SET
			title          = EXCLUDED.title,
			brand          = EXCLUDED.brand,
			category       = EXCLUDED.category,
			price          = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			rating         = EXCLUDED.rating,
			image_url      = EXCLUDED.image_url,
			product_url    = EXCLUDED.product_url,
			updated_at     = EXCLUDED.updated_at`

	ctx, end := database.TraceQuery(ctx, "UpsertProduct", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Brand,
		p.Category,
		p.Price,
		p.OriginalPrice,
		p.Rating,
		p.ImageURL,
		p.ProductURL,
		p.UpdatedAt,
	)
	if err != nil {
		return apperrors.StoreUnavailable("upsert product", err)
	}
	return nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, op, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StoreUnavailable(op, err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.StoreUnavailable("scan product row", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("iterate product rows", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p                            domain.Product
		brand, category, image, url  *string
		price, originalPrice, rating *float64
	)

	if err := row.Scan(
		&p.ID,
		&p.Title,
		&brand,
		&category,
		&price,
		&originalPrice,
		&rating,
		&image,
		&url,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Brand = deref(brand)
	p.Category = deref(category)
	p.ImageURL = deref(image)
	p.ProductURL = deref(url)
	p.Price, p.OriginalPrice, p.Rating = domain.NormalizePrices(price, originalPrice, rating)
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
