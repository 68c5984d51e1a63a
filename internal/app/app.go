package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/PrashansaChaudhary/amasift-compare/internal/config"
	"github.com/PrashansaChaudhary/amasift-compare/internal/event"
	handler "github.com/PrashansaChaudhary/amasift-compare/internal/handler/http"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository/guarded"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository/postgres"
	redisrepo "github.com/PrashansaChaudhary/amasift-compare/internal/repository/redis"
	"github.com/PrashansaChaudhary/amasift-compare/internal/service"
	"github.com/PrashansaChaudhary/amasift-compare/migrations"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/breaker"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/database"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/health"
	pkgkafka "github.com/PrashansaChaudhary/amasift-compare/pkg/kafka"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/middleware"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/tracing"
)

const (
	serviceName    = "compare"
	serviceVersion = "0.1.0"
)

// App wires together all dependencies and runs the comparison service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error

	// stop ends background work started for the router (rate limiter sweeps).
	stop context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracingCfg := tracing.DefaultConfig(serviceName)
	tracingCfg.ServiceVersion = serviceVersion
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Enabled = cfg.OTELEnabled
	tracerShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	a.pool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(registry, a.pool, serviceName); err != nil {
		a.closeResources()
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
		a.closeResources()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Store circuit breakers. Postgres repositories share one breaker; the
	// redis history store gets its own so a redis outage leaves reads alone.
	breakerMetrics := breaker.NewMetrics(registry)
	pgBreakerCfg := breaker.DefaultConfig("postgres")
	pgBreakerCfg.Timeout = cfg.BreakerTimeout()
	pgBreaker := breaker.New(pgBreakerCfg, breakerMetrics, logger)

	products := guarded.NewProductRepository(postgres.NewProductRepository(a.pool), pgBreaker)
	reviews := guarded.NewReviewRepository(postgres.NewReviewRepository(a.pool), pgBreaker)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return a.pool.Ping(ctx)
	})

	// Comparison history backend.
	var history repository.HistoryRepository
	switch cfg.HistoryBackend {
	case config.HistoryBackendRedis:
		a.redis, err = database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		redisBreakerCfg := breaker.DefaultConfig("redis")
		redisBreakerCfg.Timeout = cfg.BreakerTimeout()
		history = guarded.NewHistoryRepository(
			redisrepo.NewHistoryRepository(a.redis, cfg.HistoryTTL()),
			breaker.New(redisBreakerCfg, breakerMetrics, logger),
		)
		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	default:
		history = guarded.NewHistoryRepository(postgres.NewHistoryRepository(a.pool), pgBreaker)
	}
	logger.Info("comparison history backend selected", slog.String("backend", cfg.HistoryBackend))

	// Comparison events.
	var events service.ComparisonEvents = event.Discard{}
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), registry, logger)
		if err := pingKafkaWithRetry(ctx, a.producer, logger); err != nil {
			logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
		events = event.NewProducer(a.producer, logger)
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return a.producer.Ping(ctx)
		})
	}

	// Build the dependency graph.
	reviewService := service.NewReviewService(reviews, products, logger)
	services := handler.Services{
		Products:    service.NewProductService(products, reviewService, logger),
		Reviews:     reviewService,
		Categories:  service.NewCategoryService(products, logger),
		Comparisons: service.NewComparisonService(products, reviewService, history, events, registry, logger, cfg.ReviewsPerProduct),
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	routerCtx, stop := context.WithCancel(context.Background())
	a.stop = stop

	// HTTP router.
	router := handler.NewRouter(routerCtx, services, healthHandler, registry, handler.RouterConfig{
		CORS:           cors,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server, then blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer, redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if a.stop != nil {
		a.stop()
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close store and broker connections.
	errs = append(errs, a.closeConnections()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases whatever NewApp managed to open before failing.
func (a *App) closeResources() {
	_ = a.closeConnections()
	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = a.tracerShutdown(ctx)
	}
}

func (a *App) closeConnections() []error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errs
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s/4s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if lastErr = producer.Ping(ctx); lastErr == nil {
			return nil
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
			wait := base + jitter
			logger.Warn("kafka producer ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", 3),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka producer ping failed after 3 attempts: %w", lastErr)
}
