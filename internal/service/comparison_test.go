package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
)

type comparisonFixture struct {
	svc      *ComparisonService
	products *mockProductRepository
	reviews  *mockReviewRepository
	history  *mockHistoryRepository
	events   *mockEvents
	reg      *prometheus.Registry
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newComparisonFixture() *comparisonFixture {
	f := &comparisonFixture{
		products: new(mockProductRepository),
		reviews:  new(mockReviewRepository),
		history:  new(mockHistoryRepository),
		events:   new(mockEvents),
		reg:      prometheus.NewRegistry(),
	}
	reviewSvc := NewReviewService(f.reviews, f.products, newTestLogger())
	f.svc = NewComparisonService(f.products, reviewSvc, f.history, f.events, f.reg, newTestLogger(), 5)

	ids := []string{"hist-1", "hist-2", "hist-3"}
	f.svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *comparisonFixture) outcomes(outcome string) float64 {
	return testutil.ToFloat64(f.svc.metrics.total.WithLabelValues(outcome))
}

func TestCompare_Success(t *testing.T) {
	f := newComparisonFixture()
	ctx := context.Background()

	requested := []string{"C", "A", "B"}
	f.products.On("GetByIDs", mock.Anything, requested).Return([]domain.Product{
		product("A", 20, 25, 4.0),
		product("B", 15, 15, 3.0),
		product("C", 30, 60, 5.0),
	}, nil)
	f.reviews.On("ListByProducts", mock.Anything, requested, 5).Return([]domain.Review{
		review(1, "A", 5, 1, nil),
		review(2, "A", 4, 2, nil),
		review(3, "B", 3, 0, nil),
	}, nil)
	f.history.On("Append", mock.Anything, domain.HistoryEntry{
		ID:         "hist-1",
		SessionID:  "sess-1",
		ProductIDs: requested,
		CreatedAt:  fixedNow,
	}).Return(nil)
	f.events.On("PublishComparisonCreated", mock.Anything, "hist-1", requested, mock.Anything).Return(nil)

	result, err := f.svc.Compare(ctx, CompareInput{ProductIDs: requested, SessionID: "sess-1"})

	require.NoError(t, err)
	assert.Equal(t, "sess-1", result.SessionID)
	require.Len(t, result.Products, 3)
	assert.Equal(t, "C", result.Products[0].ID)
	assert.Equal(t, "A", result.Products[1].ID)
	assert.Equal(t, "B", result.Products[2].ID)
	assert.Empty(t, result.Products[0].Reviews)
	assert.NotNil(t, result.Products[0].Reviews)
	require.Len(t, result.Products[1].Reviews, 2)
	assert.Equal(t, int64(2), result.Products[1].Reviews[0].ID)

	m := result.Comparison
	assert.Equal(t, "B", *m.PriceWinner)
	assert.Equal(t, "C", *m.RatingWinner)
	assert.Equal(t, "A", *m.ReviewCountWinner)
	assert.Equal(t, "C", *m.DiscountWinner)
	assert.Equal(t, "A", *m.ValueWinner)

	assert.Equal(t, 1.0, f.outcomes(OutcomeSuccess))
	f.history.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestCompare_GeneratesSessionID(t *testing.T) {
	f := newComparisonFixture()
	ctx := context.Background()

	requested := []string{"A", "B"}
	f.products.On("GetByIDs", mock.Anything, requested).Return([]domain.Product{
		product("A", 10, 10, 4),
		product("B", 12, 12, 4),
	}, nil)
	f.reviews.On("ListByProducts", mock.Anything, requested, 5).Return([]domain.Review{}, nil)
	f.history.On("Append", mock.Anything, mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ID == "hist-2" && e.SessionID == "hist-1"
	})).Return(nil)
	f.events.On("PublishComparisonCreated", mock.Anything, "hist-2", requested, mock.Anything).Return(nil)

	result, err := f.svc.Compare(ctx, CompareInput{ProductIDs: requested, SessionID: "   "})

	require.NoError(t, err)
	assert.Equal(t, "hist-1", result.SessionID)
	f.history.AssertExpectations(t)
}

func TestCompare_TooFewDistinctIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"empty", nil},
		{"single", []string{"A"}},
		{"duplicates", []string{"A", "A"}},
		{"blank", []string{"A", " ", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newComparisonFixture()

			_, err := f.svc.Compare(context.Background(), CompareInput{ProductIDs: tt.ids})

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
			assert.Equal(t, 1.0, f.outcomes(OutcomeInvalid))
			f.products.AssertNotCalled(t, "GetByIDs")
			f.history.AssertNotCalled(t, "Append")
		})
	}
}

func TestCompare_DeduplicatesIDs(t *testing.T) {
	f := newComparisonFixture()

	requested := []string{"A", "B", "A"}
	resolved := []string{"A", "B"}
	f.products.On("GetByIDs", mock.Anything, resolved).Return([]domain.Product{
		product("A", 10, 10, 4),
		product("B", 12, 12, 4),
	}, nil)
	f.reviews.On("ListByProducts", mock.Anything, resolved, 5).Return([]domain.Review{}, nil)
	f.history.On("Append", mock.Anything, mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return assert.ObjectsAreEqual(requested, e.ProductIDs)
	})).Return(nil)
	f.events.On("PublishComparisonCreated", mock.Anything, mock.Anything, requested, mock.Anything).Return(nil)

	result, err := f.svc.Compare(context.Background(), CompareInput{ProductIDs: requested, SessionID: "s"})

	require.NoError(t, err)
	assert.Len(t, result.Products, 2)
}

func TestCompare_FewerThanTwoFound(t *testing.T) {
	f := newComparisonFixture()

	requested := []string{"A", "ghost"}
	f.products.On("GetByIDs", mock.Anything, requested).Return([]domain.Product{product("A", 10, 10, 4)}, nil)
	f.reviews.On("ListByProducts", mock.Anything, requested, 5).Return([]domain.Review{}, nil)

	_, err := f.svc.Compare(context.Background(), CompareInput{ProductIDs: requested, SessionID: "s"})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "no products found for the given ids", appErr.Message)
	assert.Equal(t, 1.0, f.outcomes(OutcomeNotFound))
	f.history.AssertNotCalled(t, "Append")
}

func TestCompare_MissingIDsAreSkipped(t *testing.T) {
	f := newComparisonFixture()

	requested := []string{"A", "ghost", "B"}
	f.products.On("GetByIDs", mock.Anything, requested).Return([]domain.Product{
		product("B", 12, 12, 4),
		product("A", 10, 10, 4),
	}, nil)
	f.reviews.On("ListByProducts", mock.Anything, requested, 5).Return([]domain.Review{}, nil)
	f.history.On("Append", mock.Anything, mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return len(e.ProductIDs) == 3
	})).Return(nil)
	f.events.On("PublishComparisonCreated", mock.Anything, mock.Anything, requested, mock.Anything).Return(nil)

	result, err := f.svc.Compare(context.Background(), CompareInput{ProductIDs: requested, SessionID: "s"})

	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "A", result.Products[0].ID)
	assert.Equal(t, "B", result.Products[1].ID)
}

func TestCompare_StoreUnavailable(t *testing.T) {
	f := newComparisonFixture()

	requested := []string{"A", "B"}
	f.products.On("GetByIDs", mock.Anything, requested).
		Return(nil, apperrors.StoreUnavailable("get products", errors.New("refused")))
	f.reviews.On("ListByProducts", mock.Anything, requested, 5).Return([]domain.Review{}, nil).Maybe()

	_, err := f.svc.Compare(context.Background(), CompareInput{ProductIDs: requested})

	require.Error(t, err)
	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.Equal(t, 1.0, f.outcomes(OutcomeUnavailable))
}

func TestCompare_HistoryFailureFails(t *testing.T) {
	f := newComparisonFixture()

	requested := []string{"A", "B"}
	f.products.On("GetByIDs", mock.Anything, requested).Return([]domain.Product{
		product("A", 10, 10, 4),
		product("B", 12, 12, 4),
	}, nil)
	f.reviews.On("ListByProducts", mock.Anything, requested, 5).Return([]domain.Review{}, nil)
	f.history.On("Append", mock.Anything, mock.Anything).
		Return(apperrors.StoreUnavailable("append history", errors.New("down")))

	_, err := f.svc.Compare(context.Background(), CompareInput{ProductIDs: requested, SessionID: "s"})

	require.Error(t, err)
	assert.True(t, apperrors.IsStoreUnavailable(err))
	f.events.AssertNotCalled(t, "PublishComparisonCreated")
}

func TestCompare_EventFailureIsIgnored(t *testing.T) {
	f := newComparisonFixture()

	requested := []string{"A", "B"}
	f.products.On("GetByIDs", mock.Anything, requested).Return([]domain.Product{
		product("A", 10, 10, 4),
		product("B", 12, 12, 4),
	}, nil)
	f.reviews.On("ListByProducts", mock.Anything, requested, 5).Return([]domain.Review{}, nil)
	f.history.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.events.On("PublishComparisonCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker unreachable"))

	result, err := f.svc.Compare(context.Background(), CompareInput{ProductIDs: requested, SessionID: "s"})

	require.NoError(t, err)
	assert.Equal(t, "s", result.SessionID)
	assert.Equal(t, 1.0, f.outcomes(OutcomeSuccess))
}

func TestHistory_RequiresSession(t *testing.T) {
	f := newComparisonFixture()

	_, err := f.svc.History(context.Background(), "  ", 10)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	f.history.AssertNotCalled(t, "ListBySession")
}

func TestHistory_ClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, domain.DefaultHistoryLimit},
		{"negative", -3, domain.DefaultHistoryLimit},
		{"within", 25, 25},
		{"cap", 1000, domain.MaxHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newComparisonFixture()
			ctx := context.Background()

			entries := []domain.HistoryEntry{{ID: "h", SessionID: "s", ProductIDs: []string{"A", "B"}, CreatedAt: fixedNow}}
			f.history.On("ListBySession", ctx, "s", tt.want).Return(entries, nil)

			got, err := f.svc.History(ctx, "s", tt.limit)

			require.NoError(t, err)
			assert.Equal(t, entries, got)
			f.history.AssertExpectations(t)
		})
	}
}
