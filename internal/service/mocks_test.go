package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
)

// --- Mock Product Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) TopDiscounted(ctx context.Context, limit int) ([]domain.Deal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deal), args.Error(1)
}

func (m *mockProductRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockProductRepository) CategoryCounts(ctx context.Context) ([]domain.RawCategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawCategoryCount), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Review, error) {
	args := m.Called(ctx, productID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListAllByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByProducts(ctx context.Context, productIDs []string, limitPerProduct int) ([]domain.Review, error) {
	args := m.Called(ctx, productIDs, limitPerProduct)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

// --- Mock History Repository ---

type mockHistoryRepository struct {
	mock.Mock
}

func (m *mockHistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockHistoryRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

// --- Mock Events ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishComparisonCreated(ctx context.Context, historyID string, requested []string, result *domain.ComparisonResult) error {
	return m.Called(ctx, historyID, requested, result).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func product(id string, price, original, rating float64) domain.Product {
	return domain.Product{
		ID:            id,
		Title:         "Product " + id,
		Price:         price,
		OriginalPrice: original,
		Rating:        rating,
	}
}

func review(id int64, productID string, rating float64, helpful int, sentiment *float64) domain.Review {
	return domain.Review{
		ID:             id,
		ProductID:      productID,
		UserName:       "user",
		Rating:         rating,
		HelpfulVotes:   helpful,
		SentimentScore: sentiment,
	}
}
