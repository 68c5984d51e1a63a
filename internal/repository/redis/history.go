package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/database"
	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
)

const keyPrefix = "compare:history:"

// HistoryRepository implements repository.HistoryRepository on Redis. Each
// session is a list with the newest entry at the head.
type HistoryRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHistoryRepository creates a Redis-backed history repository. A positive
// ttl expires a session's history that long after its last comparison.
func NewHistoryRepository(client *redis.Client, ttl time.Duration) *HistoryRepository {
	return &HistoryRepository{
		client: client,
		ttl:    ttl,
	}
}

// Append pushes an entry onto the session list.
func (r *HistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) (err error) {
	key := keyPrefix + entry.SessionID

	ctx, end := database.TraceStore(ctx, database.SystemRedis, "AppendHistory", "LPUSH "+keyPrefix+"{session}")
	defer func() { end(err) }()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return apperrors.StoreUnavailable("append history", err)
	}
	return nil
}

// ListBySession returns up to limit entries, newest first.
func (r *HistoryRepository) ListBySession(ctx context.Context, sessionID string, limit int) (_ []domain.HistoryEntry, err error) {
	key := keyPrefix + sessionID

	ctx, end := database.TraceStore(ctx, database.SystemRedis, "ListHistoryBySession", "LRANGE "+keyPrefix+"{session}")
	defer func() { end(err) }()

	if limit <= 0 {
		return []domain.HistoryEntry{}, nil
	}

	raw, err := r.client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, apperrors.StoreUnavailable("list history", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("unmarshal history entry: %w", err)
		}
		if e.ProductIDs == nil {
			e.ProductIDs = []string{}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
