package postgres

import (
	"context"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/database"
	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
)

const reviewColumns = `id, product_id, COALESCE(user_name, ''), COALESCE(rating, 0), COALESCE(title, ''),
		COALESCE(content, ''), COALESCE(helpful_votes, 0), date, sentiment_score`

// helpfulOrder is the single ordering used for every review listing.
const helpfulOrder = `helpful_votes DESC, date DESC NULLS LAST, id`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListByProduct returns a page of reviews for a product.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) (_ []domain.Review, err error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1
		ORDER BY ` + helpfulOrder + `
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListReviewsByProduct", query)
	defer func() { end(err) }()

	return r.queryReviews(ctx, "list reviews", query, productID, limit, offset)
}

// ListAllByProduct returns every review of a product in retrieval order.
func (r *ReviewRepository) ListAllByProduct(ctx context.Context, productID string) (_ []domain.Review, err error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1
		ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListAllReviewsByProduct", query)
	defer func() { end(err) }()

	return r.queryReviews(ctx, "list product reviews", query, productID)
}

// ListByProducts returns the most helpful reviews of each product, at most
// limitPerProduct per product.
func (r *ReviewRepository) ListByProducts(ctx context.Context, productIDs []string, limitPerProduct int) (_ []domain.Review, err error) {
	if len(productIDs) == 0 {
		return []domain.Review{}, nil
	}

	query := `SELECT ` + reviewColumns + `
		FROM (
			SELECT reviews.*,
			       ROW_NUMBER() OVER (PARTITION BY product_id ORDER BY ` + helpfulOrder + `) AS row_num
			FROM reviews
			WHERE product_id = ANY($1)
		) ranked
		WHERE row_num <= $2
		ORDER BY product_id, ` + helpfulOrder

	ctx, end := database.TraceQuery(ctx, "ListReviewsByProducts", query)
	defer func() { end(err) }()

	return r.queryReviews(ctx, "list reviews for products", query, productIDs, limitPerProduct)
}

// InsertReview adds a review and returns its generated ID.
func (r *ReviewRepository) InsertReview(ctx context.Context, rv *domain.Review) (_ int64, err error) {
	query := `
		INSERT INTO reviews (product_id, user_name, rating, title, content, helpful_votes, date, sentiment_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "InsertReview", query)
	defer func() { end(err) }()

	var id int64
	err = r.pool.QueryRow(ctx, query,
		rv.ProductID,
		rv.UserName,
		rv.Rating,
		rv.Title,
		rv.Content,
		rv.HelpfulVotes,
		rv.Date,
		rv.SentimentScore,
	).Scan(&id)
	if err != nil {
		return 0, apperrors.StoreUnavailable("insert review", err)
	}
	rv.ID = id
	return id, nil
}

func (r *ReviewRepository) queryReviews(ctx context.Context, op, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StoreUnavailable(op, err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserName,
			&rv.Rating,
			&rv.Title,
			&rv.Content,
			&rv.HelpfulVotes,
			&rv.Date,
			&rv.SentimentScore,
		); err != nil {
			return nil, apperrors.StoreUnavailable("scan review row", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("iterate review rows", err)
	}
	return reviews, nil
}
