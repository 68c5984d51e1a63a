package domain

import (
	"math"
	"strings"
)

// Metric names as they appear in a comparison.
const (
	MetricPrice       = "price_winner"
	MetricRating      = "rating_winner"
	MetricReviewCount = "review_count_winner"
	MetricDiscount    = "discount_winner"
	MetricValue       = "value_winner"
)

// MinCompareProducts is the smallest number of products a comparison takes.
const MinCompareProducts = 2

// ComparedProduct is a product with the reviews attached for a comparison.
type ComparedProduct struct {
	Product
	Reviews []Review `json:"reviews"`
}

// ComparisonMetrics names the winning product per metric. A nil winner only
// occurs for an empty input.
type ComparisonMetrics struct {
	PriceWinner       *string `json:"price_winner"`
	RatingWinner      *string `json:"rating_winner"`
	ReviewCountWinner *string `json:"review_count_winner"`
	DiscountWinner    *string `json:"discount_winner"`
	ValueWinner       *string `json:"value_winner"`
}

// Winners returns the metrics keyed by metric name. It always has five keys.
func (m ComparisonMetrics) Winners() map[string]*string {
	return map[string]*string{
		MetricPrice:       m.PriceWinner,
		MetricRating:      m.RatingWinner,
		MetricReviewCount: m.ReviewCountWinner,
		MetricDiscount:    m.DiscountWinner,
		MetricValue:       m.ValueWinner,
	}
}

// ComparisonResult is what a comparison returns to the caller.
type ComparisonResult struct {
	Products   []ComparedProduct `json:"products"`
	Comparison ComparisonMetrics `json:"comparison"`
	SessionID  string            `json:"session_id"`
}

// ValueRatio is price per rating point. Unrated products get +Inf.
func ValueRatio(price, rating float64) float64 {
	if rating > 0 {
		return price / rating
	}
	return math.Inf(1)
}

// tracker keeps the running best value of one metric. The first observation
// seeds it and later ones replace it only when strictly better.
type tracker struct {
	better func(candidate, best float64) bool
	best   float64
	winner *string
}

func (t *tracker) observe(id string, v float64) {
	if t.winner == nil || t.better(v, t.best) {
		t.best = v
		t.winner = &id
	}
}

func lower(candidate, best float64) bool  { return candidate < best }
func higher(candidate, best float64) bool { return candidate > best }

// ComputeMetrics picks the winner of each metric in one pass over products.
// Ties go to the product that appears first. The review count is the number
// of reviews attached to each product, not the total in the store.
func ComputeMetrics(products []ComparedProduct) ComparisonMetrics {
	price := tracker{better: lower}
	rating := tracker{better: higher}
	reviews := tracker{better: higher}
	discount := tracker{better: higher}
	value := tracker{better: lower}

	for _, p := range products {
		price.observe(p.ID, p.Price)
		rating.observe(p.ID, p.Rating)
		reviews.observe(p.ID, float64(len(p.Reviews)))
		discount.observe(p.ID, p.DiscountPercent())
		value.observe(p.ID, ValueRatio(p.Price, p.Rating))
	}

	return ComparisonMetrics{
		PriceWinner:       price.winner,
		RatingWinner:      rating.winner,
		ReviewCountWinner: reviews.winner,
		DiscountWinner:    discount.winner,
		ValueWinner:       value.winner,
	}
}

// DistinctProductIDs trims ids, drops blanks and removes duplicates while
// keeping the first occurrence.
func DistinctProductIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
