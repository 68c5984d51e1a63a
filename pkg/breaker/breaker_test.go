package breaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
)

func testConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func storeDown(context.Context) (int, error) {
	return 0, apperrors.StoreUnavailable("load", fmt.Errorf("connection refused"))
}

func gaugeValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.state.WithLabelValues(name).Write(&out))
	return out.GetGauge().GetValue()
}

func TestDo_PassesThroughResult(t *testing.T) {
	b := New(testConfig("ok"), nil, nil)

	v, err := Do(context.Background(), b, "load", func(context.Context) (string, error) {
		return "B00X", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "B00X", v)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestDo_TripsOnStoreFailures(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	b := New(testConfig("products"), metrics, nil)

	for i := 0; i < 3; i++ {
		_, err := Do(context.Background(), b, "load", storeDown)
		require.True(t, apperrors.IsStoreUnavailable(err))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, float64(2), gaugeValue(t, metrics, "products"))

	called := false
	_, err := Do(context.Background(), b, "load", func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	require.Error(t, err)
	assert.False(t, called, "open breaker must not reach the store")
	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
}

func TestDo_DomainErrorsDoNotTrip(t *testing.T) {
	b := New(testConfig("reviews"), nil, nil)

	for i := 0; i < 10; i++ {
		_, err := Do(context.Background(), b, "load", func(context.Context) (int, error) {
			return 0, apperrors.NotFound("product", "X")
		})
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestDo_RecoversAfterTimeout(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	b := New(testConfig("history"), metrics, nil)

	for i := 0; i < 3; i++ {
		_, _ = Do(context.Background(), b, "append", storeDown)
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, b.State())

	err := Exec(context.Background(), b, "append", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, float64(0), gaugeValue(t, metrics, "history"))
}

func TestDo_DomainErrorsDiluteStoreFailures(t *testing.T) {
	b := New(testConfig("mixed"), nil, nil)
	notFound := func(context.Context) (int, error) {
		return 0, apperrors.NotFound("product", "X")
	}

	_, _ = Do(context.Background(), b, "load", notFound)
	_, _ = Do(context.Background(), b, "load", notFound)
	_, _ = Do(context.Background(), b, "load", storeDown)

	// one failure in three calls stays under the 0.5 ratio
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestDo_HalfOpenClosesOnDomainError(t *testing.T) {
	b := New(testConfig("trial"), nil, nil)

	for i := 0; i < 3; i++ {
		_, _ = Do(context.Background(), b, "load", storeDown)
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, gobreaker.StateHalfOpen, b.State())

	_, err := Do(context.Background(), b, "load", func(context.Context) (int, error) {
		return 0, apperrors.NotFound("product", "X")
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestExec_ReturnsError(t *testing.T) {
	b := New(testConfig("exec"), nil, nil)
	cause := errors.New("boom")

	err := Exec(context.Background(), b, "op", func(context.Context) error { return cause })
	assert.ErrorIs(t, err, cause)
}

func TestNewMetrics_SharedAcrossBreakers(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	assert.NotPanics(t, func() {
		New(testConfig("a"), metrics, nil)
		New(testConfig("b"), metrics, nil)
	})
}
