package domain

import (
	"cmp"
	"slices"
	"time"
)

// Sentiment thresholds. A score at or past a threshold puts the review in
// that bucket; everything between is neutral.
const (
	PositiveSentimentThreshold = 0.5
	NegativeSentimentThreshold = -0.5

	// TopSentimentReviews is how many extreme reviews each bucket reports.
	TopSentimentReviews = 3
)

// Review is a product review as loaded from the store.
type Review struct {
	ID             int64      `json:"id"`
	ProductID      string     `json:"product_id"`
	UserName       string     `json:"user_name"`
	Rating         float64    `json:"rating"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	HelpfulVotes   int        `json:"helpful_votes"`
	Date           *time.Time `json:"date"`
	SentimentScore *float64   `json:"sentiment_score"`
}

// ReviewStats summarizes the ratings of a product's reviews.
type ReviewStats struct {
	ReviewCount        int         `json:"review_count"`
	AverageRating      float64     `json:"average_rating"`
	PositiveReviews    int         `json:"positive_reviews"`
	NegativeReviews    int         `json:"negative_reviews"`
	AverageSentiment   float64     `json:"average_sentiment"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// SentimentSummary buckets a product's reviews by sentiment score.
type SentimentSummary struct {
	AverageSentiment float64  `json:"average_sentiment"`
	PositiveCount    int      `json:"positive_count"`
	NeutralCount     int      `json:"neutral_count"`
	NegativeCount    int      `json:"negative_count"`
	TopPositive      []Review `json:"top_positive"`
	TopNegative      []Review `json:"top_negative"`
}

func emptyDistribution() map[int]int {
	return map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
}

// SummarizeReviews computes rating statistics. An empty input yields the zero
// summary with every histogram bucket present.
//
// A rating of 4 or more is positive and 2 or less negative. The histogram
// buckets ratings by their integer part and skips anything outside 1..5.
// The average sentiment only covers scored reviews.
func SummarizeReviews(reviews []Review) ReviewStats {
	stats := ReviewStats{RatingDistribution: emptyDistribution()}
	if len(reviews) == 0 {
		return stats
	}

	var (
		ratingSum    float64
		sentimentSum float64
		scored       int
	)
	for _, r := range reviews {
		ratingSum += r.Rating
		switch {
		case r.Rating >= 4:
			stats.PositiveReviews++
		case r.Rating <= 2:
			stats.NegativeReviews++
		}

		if bucket := int(r.Rating); bucket >= 1 && bucket <= 5 {
			stats.RatingDistribution[bucket]++
		}

		if r.SentimentScore != nil {
			sentimentSum += *r.SentimentScore
			scored++
		}
	}

	stats.ReviewCount = len(reviews)
	stats.AverageRating = ratingSum / float64(len(reviews))
	if scored > 0 {
		stats.AverageSentiment = sentimentSum / float64(scored)
	}
	return stats
}

// AnalyzeSentiment buckets reviews into positive, neutral and negative and
// picks the most extreme reviews of each polar bucket. Unscored reviews are
// neutral and do not contribute to the average. Equal scores keep the input
// order.
func AnalyzeSentiment(reviews []Review) SentimentSummary {
	var (
		positive []Review
		negative []Review
		sum      float64
		scored   int
		summary  SentimentSummary
	)

	for _, r := range reviews {
		if r.SentimentScore == nil {
			summary.NeutralCount++
			continue
		}
		score := *r.SentimentScore
		sum += score
		scored++

		switch {
		case score >= PositiveSentimentThreshold:
			positive = append(positive, r)
		case score <= NegativeSentimentThreshold:
			negative = append(negative, r)
		default:
			summary.NeutralCount++
		}
	}

	slices.SortStableFunc(positive, func(a, b Review) int {
		return cmp.Compare(*b.SentimentScore, *a.SentimentScore)
	})
	slices.SortStableFunc(negative, func(a, b Review) int {
		return cmp.Compare(*a.SentimentScore, *b.SentimentScore)
	})

	summary.PositiveCount = len(positive)
	summary.NegativeCount = len(negative)
	summary.TopPositive = firstN(positive, TopSentimentReviews)
	summary.TopNegative = firstN(negative, TopSentimentReviews)
	if scored > 0 {
		summary.AverageSentiment = sum / float64(scored)
	}
	return summary
}

// SortByHelpfulness orders reviews in place by helpful votes, most first,
// then by date, newest first. Undated reviews go after every dated review of
// the same vote count and keep their relative order.
func SortByHelpfulness(reviews []Review) {
	slices.SortStableFunc(reviews, compareHelpfulness)
}

func compareHelpfulness(a, b Review) int {
	if c := cmp.Compare(b.HelpfulVotes, a.HelpfulVotes); c != 0 {
		return c
	}
	switch {
	case a.Date == nil && b.Date == nil:
		return 0
	case a.Date == nil:
		return 1
	case b.Date == nil:
		return -1
	}
	return b.Date.Compare(*a.Date)
}

// GroupReviews buckets reviews by product, orders each bucket by
// helpfulness and keeps at most limit reviews per product. Every requested
// product has an entry, empty when it has no reviews. Reviews of products
// that were not requested are dropped.
func GroupReviews(productIDs []string, reviews []Review, limit int) map[string][]Review {
	grouped := make(map[string][]Review, len(productIDs))
	for _, id := range productIDs {
		grouped[id] = []Review{}
	}
	for _, r := range reviews {
		if bucket, ok := grouped[r.ProductID]; ok {
			grouped[r.ProductID] = append(bucket, r)
		}
	}
	for id, bucket := range grouped {
		SortByHelpfulness(bucket)
		grouped[id] = firstN(bucket, limit)
	}
	return grouped
}

func firstN(reviews []Review, n int) []Review {
	if reviews == nil {
		return []Review{}
	}
	if n >= 0 && len(reviews) > n {
		return reviews[:n]
	}
	return reviews
}
