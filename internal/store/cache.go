package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// listCacheTTL keeps cached lists short-lived; Postgres stays the source of
// truth and a stale entry ages out quickly even without a mutation.
const listCacheTTL = 30 * time.Second

// ListCache is a read-through cache for per-user resource lists. The
// contract is invalidate-plus-refetch: a successful mutation deletes the
// key and the next List repopulates it from the database. Cache errors are
// logged and treated as misses so Redis downtime never fails a read.
type ListCache struct {
	rdb *redis.Client
}

func NewListCache(rdb *redis.Client) *ListCache {
	return &ListCache{rdb: rdb}
}

// Get unmarshals a cached list into dest. Returns false on miss or any
// cache error.
func (c *ListCache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Error("list cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Error("list cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores a list under key.
func (c *ListCache) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("list cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, listCacheTTL).Err(); err != nil {
		slog.Error("list cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops the cached list for key. Called exactly once per
// successful mutation; failed mutations leave the cache untouched.
func (c *ListCache) Invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		slog.Error("list cache invalidation failed", "key", key, "error", err)
	}
}
