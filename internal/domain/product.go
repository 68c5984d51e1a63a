package domain

import (
	"time"
)

// Product is a catalog entry as the store holds it. Numeric fields are
// already coerced: a missing price or rating is 0 and a missing original
// price equals the price.
type Product struct {
	ID            string    `json:"product_id"`
	Title         string    `json:"title"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price"`
	Rating        float64   `json:"rating"`
	ImageURL      string    `json:"image_url"`
	ProductURL    string    `json:"product_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DiscountPercent is the reduction from the original price in percent. It is
// 0 unless the original price is above the current price.
func (p Product) DiscountPercent() float64 {
	if p.OriginalPrice > p.Price && p.OriginalPrice > 0 {
		return (p.OriginalPrice - p.Price) / p.OriginalPrice * 100
	}
	return 0
}

// Deal is a discounted product together with its discount.
type Deal struct {
	Product
	DiscountPercentage float64 `json:"discount_percentage"`
}

// ProductFilter narrows a product listing. Nil fields are not applied.
type ProductFilter struct {
	Category  *string
	Search    *string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Limit     int
	Offset    int
}

// ProductDetail is a product with its most helpful reviews and statistics.
type ProductDetail struct {
	Product
	Reviews     []Review     `json:"reviews,omitempty"`
	ReviewStats *ReviewStats `json:"review_stats,omitempty"`
}

// NormalizePrices applies the defaulting rules for nullable store columns.
func NormalizePrices(price, originalPrice, rating *float64) (float64, float64, float64) {
	var p, op, r float64
	if price != nil {
		p = *price
	}
	op = p
	if originalPrice != nil && *originalPrice != 0 {
		op = *originalPrice
	}
	if rating != nil {
		r = *rating
	}
	return p, op, r
}
