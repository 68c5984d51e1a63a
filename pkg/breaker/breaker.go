// Package breaker guards calls to a backing store with a circuit breaker so
// that an unreachable database fails fast instead of piling up requests.
package breaker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
)

// Config holds circuit breaker settings.
type Config struct {
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the failure counts while closed. 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once MinRequests calls were seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultConfig returns the settings used for the catalog stores.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// Metrics are the collectors shared by every breaker on one registry.
type Metrics struct {
	state    *prometheus.GaugeVec
	rejected *prometheus.CounterVec
}

// NewMetrics registers the breaker collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		state: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "store_breaker_state",
			Help: "Current state of the store circuit breaker (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "store_breaker_rejected_total",
			Help: "Calls rejected without reaching the store because the breaker was open",
		}, []string{"name"}),
	}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Breaker wraps a two-step gobreaker so one instance can guard calls of any
// result type.
type Breaker struct {
	name    string
	cb      *gobreaker.TwoStepCircuitBreaker[struct{}]
	metrics *Metrics
}

// New creates a breaker. metrics may be nil.
func New(cfg Config, metrics *Metrics, logger *slog.Logger) *Breaker {
	b := &Breaker{name: cfg.Name, metrics: metrics}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return !apperrors.IsStoreUnavailable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("store breaker state change",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
			if metrics != nil {
				metrics.state.WithLabelValues(name).Set(stateValue(to))
			}
		},
	}

	b.cb = gobreaker.NewTwoStepCircuitBreaker[struct{}](settings)
	if metrics != nil {
		metrics.state.WithLabelValues(cfg.Name).Set(0)
	}
	return b
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Do runs fn through b. Only store-unavailable errors count as failures, so
// a NotFound or validation error never trips the breaker. While the breaker
// is open, fn is not called and a StoreUnavailable error is returned.
func Do[T any](ctx context.Context, b *Breaker, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	done, err := b.cb.Allow()
	if err != nil {
		if b.metrics != nil {
			b.metrics.rejected.WithLabelValues(b.name).Inc()
		}
		return zero, apperrors.StoreUnavailable(op, err)
	}

	v, err := fn(ctx)
	done(err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Exec is Do for calls that only return an error.
func Exec(ctx context.Context, b *Breaker, op string, fn func(context.Context) error) error {
	_, err := Do(ctx, b, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
