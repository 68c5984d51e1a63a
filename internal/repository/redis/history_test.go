package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	apperrors "github.com/PrashansaChaudhary/amasift-compare/pkg/errors"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*HistoryRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewHistoryRepository(client, ttl), mr
}

func entryAt(id, session string, ids []string, minute int) domain.HistoryEntry {
	at := time.Date(2025, 6, 15, 12, minute, 0, 0, time.UTC)
	return domain.NewHistoryEntry(id, session, ids, at)
}

// ---------------------------------------------------------------------------
// Append / ListBySession
// ---------------------------------------------------------------------------

func TestHistoryRepository_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, entryAt("h1", "sess", []string{"P1", "P2"}, 0)))

	entries, err := repo.ListBySession(ctx, "sess", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "h1", entries[0].ID)
	assert.Equal(t, "sess", entries[0].SessionID)
	assert.Equal(t, []string{"P1", "P2"}, entries[0].ProductIDs)
	assert.True(t, entries[0].CreatedAt.Equal(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)))
}

func TestHistoryRepository_NewestFirstWithLimit(t *testing.T) {
	repo, _ := setupTestRedis(t, 0)
	ctx := context.Background()

	for i, id := range []string{"h1", "h2", "h3"} {
		require.NoError(t, repo.Append(ctx, entryAt(id, "sess", []string{"P1", "P2"}, i)))
	}
	require.NoError(t, repo.Append(ctx, entryAt("other", "sess-2", []string{"P9", "P8"}, 5)))

	entries, err := repo.ListBySession(ctx, "sess", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h3", entries[0].ID)
	assert.Equal(t, "h2", entries[1].ID)
}

func TestHistoryRepository_UnknownSession(t *testing.T) {
	repo, _ := setupTestRedis(t, 0)

	entries, err := repo.ListBySession(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestHistoryRepository_TTL(t *testing.T) {
	repo, mr := setupTestRedis(t, 2*time.Hour)

	require.NoError(t, repo.Append(context.Background(), entryAt("h1", "sess", []string{"P1", "P2"}, 0)))
	assert.Equal(t, 2*time.Hour, mr.TTL(keyPrefix+"sess"))

	mr.FastForward(3 * time.Hour)
	assert.False(t, mr.Exists(keyPrefix+"sess"))
}

func TestHistoryRepository_NoTTLKeepsForever(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)

	require.NoError(t, repo.Append(context.Background(), entryAt("h1", "sess", []string{"P1", "P2"}, 0)))
	assert.Zero(t, mr.TTL(keyPrefix+"sess"))
}

func TestHistoryRepository_StoreDown(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)
	mr.SetError("ERR store down")

	err := repo.Append(context.Background(), entryAt("h1", "sess", []string{"P1", "P2"}, 0))
	assert.True(t, apperrors.IsStoreUnavailable(err))

	_, err = repo.ListBySession(context.Background(), "sess", 10)
	assert.True(t, apperrors.IsStoreUnavailable(err))
}

func TestHistoryRepository_CorruptEntry(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)
	_, err := mr.Lpush(keyPrefix+"sess", "{not json")
	require.NoError(t, err)

	_, err = repo.ListBySession(context.Background(), "sess", 10)
	require.Error(t, err)
	assert.False(t, apperrors.IsStoreUnavailable(err))
}
