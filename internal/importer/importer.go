// Package importer loads product and review exports into the catalog.
package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/internal/repository"
)

const (
	// sniffBytes is how much of the input decides between tab and comma.
	sniffBytes = 1024

	// progressEvery controls how often progress is logged.
	progressEvery = 100

	// maxConsecutiveFailures aborts an import whose store keeps failing.
	maxConsecutiveFailures = 10
)

// Export column names.
const (
	colASINs       = "asins"
	colID          = "id"
	colName        = "name"
	colBrand       = "brand"
	colCategories  = "categories"
	colPrices      = "prices"
	colSourceURLs  = "reviews.sourceURLs"
	colRating      = "reviews.rating"
	colReviewText  = "reviews.text"
	colReviewTitle = "reviews.title"
	colUsername    = "reviews.username"
	colNumHelpful  = "reviews.numHelpful"
	colReviewDate  = "reviews.date"
)

// ErrNoIDColumn is returned when the header has neither an asins nor an id column.
var ErrNoIDColumn = errors.New("header has no asins or id column")

// Stats counts what an import did.
type Stats struct {
	Rows     int `json:"rows"`
	Products int `json:"products"`
	Reviews  int `json:"reviews"`
	Skipped  int `json:"skipped"`
}

// Importer writes exported rows through a CatalogWriter.
type Importer struct {
	writer repository.CatalogWriter
	logger *slog.Logger
	now    func() time.Time
}

// New creates an importer.
func New(writer repository.CatalogWriter, logger *slog.Logger) *Importer {
	return &Importer{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// DetectDelimiter picks tab when the sample contains one and comma otherwise.
func DetectDelimiter(sample []byte) rune {
	if bytes.IndexByte(sample, '\t') >= 0 {
		return '\t'
	}
	return ','
}

// Import reads a CSV or TSV export with a header row. Each row upserts one
// product and, when it has review text, inserts one review. Rows that cannot
// be parsed or stored are logged and skipped.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats

	br := bufio.NewReaderSize(r, 64<<10)
	sample, _ := br.Peek(sniffBytes)
	delim := DetectDelimiter(sample)
	im.logger.Info("detected delimiter", slog.String("delimiter", delimiterName(delim)))

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return stats, fmt.Errorf("read header: %w", err)
	}
	cols := newColumns(header)
	if !cols.has(colASINs) && !cols.has(colID) {
		return stats, ErrNoIDColumn
	}

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			stats.Skipped++
			im.logger.Warn("skipping unreadable row", slog.Int("row", stats.Rows), slog.String("error", err.Error()))
			continue
		}

		p, rv, err := im.parseRow(cols, row)
		if err != nil {
			stats.Skipped++
			im.logger.Warn("skipping row", slog.Int("row", stats.Rows), slog.String("error", err.Error()))
			continue
		}

		if err := im.writer.UpsertProduct(ctx, p); err != nil {
			stats.Skipped++
			failures++
			im.logger.Error("failed to import product",
				slog.String("product_id", p.ID),
				slog.String("error", err.Error()),
			)
			if failures >= maxConsecutiveFailures {
				return stats, fmt.Errorf("aborting after %d consecutive failures: %w", failures, err)
			}
			continue
		}
		failures = 0
		stats.Products++

		if rv != nil {
			if _, err := im.writer.InsertReview(ctx, rv); err != nil {
				im.logger.Error("failed to import review",
					slog.String("product_id", p.ID),
					slog.String("error", err.Error()),
				)
			} else {
				stats.Reviews++
			}
		}

		if stats.Products%progressEvery == 0 {
			im.logger.Info("import progress",
				slog.Int("products", stats.Products),
				slog.Int("reviews", stats.Reviews),
			)
		}
	}

	im.logger.Info("import finished",
		slog.Int("rows", stats.Rows),
		slog.Int("products", stats.Products),
		slog.Int("reviews", stats.Reviews),
		slog.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (im *Importer) parseRow(cols columns, row []string) (*domain.Product, *domain.Review, error) {
	id := cols.get(row, colASINs)
	if !cols.has(colASINs) {
		id = cols.get(row, colID)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, errors.New("missing product id")
	}

	price, original := CleanPrice(cols.get(row, colPrices))
	rating := parseFloat(cols.get(row, colRating))
	now := im.now().UTC()

	p := &domain.Product{
		ID:            id,
		Title:         cols.get(row, colName),
		Brand:         cols.get(row, colBrand),
		Category:      cols.get(row, colCategories),
		Price:         price,
		OriginalPrice: original,
		Rating:        rating,
		ProductURL:    cols.get(row, colSourceURLs),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	text := cols.get(row, colReviewText)
	if text == "" {
		return p, nil, nil
	}

	rv := &domain.Review{
		ProductID:    id,
		UserName:     cols.get(row, colUsername),
		Rating:       rating,
		Title:        cols.get(row, colReviewTitle),
		Content:      text,
		HelpfulVotes: parseInt(cols.get(row, colNumHelpful)),
		Date:         parseDate(cols.get(row, colReviewDate)),
	}
	return p, rv, nil
}

// columns maps header names to their index.
type columns map[string]int

func newColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

// get returns the named cell, or "" when the column is absent or the row is short.
func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// parseDate keeps the calendar date of an ISO timestamp.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}

func delimiterName(r rune) string {
	if r == '\t' {
		return "tab"
	}
	return "comma"
}
