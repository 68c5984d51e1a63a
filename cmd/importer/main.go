// Command importer loads a CSV or TSV product export into the catalog
// database.
//
//	importer [-migrate=false] <file>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/PrashansaChaudhary/amasift-compare/internal/config"
	"github.com/PrashansaChaudhary/amasift-compare/internal/importer"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository/postgres"
	"github.com/PrashansaChaudhary/amasift-compare/migrations"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/database"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/logger"
)

// catalogWriter joins the product and review repositories.
type catalogWriter struct {
	*postgres.ProductRepository
	*postgres.ReviewRepository
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	migrate := flag.Bool("migrate", true, "apply schema migrations before importing")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-migrate=false] <file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return fmt.Errorf("expected exactly one input file")
	}
	path := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("compare-importer", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if *migrate {
		if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	log.Info("importing catalog export", slog.String("file", path))
	writer := catalogWriter{
		ProductRepository: postgres.NewProductRepository(pool),
		ReviewRepository:  postgres.NewReviewRepository(pool),
	}
	stats, err := importer.New(writer, log).Import(ctx, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	log.Info("catalog import complete",
		slog.Int("products", stats.Products),
		slog.Int("reviews", stats.Reviews),
		slog.Int("skipped", stats.Skipped),
	)
	return nil
}
