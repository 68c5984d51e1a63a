package postgres

import (
	"context"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/database"
	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
)

// HistoryRepository implements repository.HistoryRepository using PostgreSQL.
// Product ids are stored as a TEXT[] so their order survives the round trip.
type HistoryRepository struct {
	pool database.DBTX
}

// NewHistoryRepository creates a new PostgreSQL-backed history repository.
func NewHistoryRepository(pool database.DBTX) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Append inserts a history entry.
func (r *HistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) (err error) {
	query := `
		INSERT INTO comparison_history (id, session_id, product_ids, created_at)
		VALUES ($1, $2, $3, $4)`

	ctx, end := database.TraceQuery(ctx, "AppendHistory", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.SessionID,
		entry.ProductIDs,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.StoreUnavailable("append history", err)
	}
	return nil
}

// ListBySession returns the newest entries of a session.
func (r *HistoryRepository) ListBySession(ctx context.Context, sessionID string, limit int) (_ []domain.HistoryEntry, err error) {
	query := `
		SELECT id, session_id, product_ids, created_at
		FROM comparison_history
		WHERE session_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`

	ctx, end := database.TraceQuery(ctx, "ListHistoryBySession", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, apperrors.StoreUnavailable("list history", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ProductIDs, &e.CreatedAt); err != nil {
			return nil, apperrors.StoreUnavailable("scan history row", err)
		}
		if e.ProductIDs == nil {
			e.ProductIDs = []string{}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("iterate history rows", err)
	}
	return entries, nil
}
