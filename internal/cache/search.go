// Package cache holds the Redis read-through cache for job search results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const scanBatch = 100

// SearchKey identifies one page of search results. Generation is the value
// Generation returned before the page was read from the database.
type SearchKey struct {
	Generation int64
	Keyword    string
	Location   string
	Page       int
	Limit      int
}

// SearchCache stores search result pages as JSON with a fixed expiry
type SearchCache struct {
	rdb    goredis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewSearchCache creates a cache writing keys under prefix
func NewSearchCache(rdb goredis.Cmdable, prefix string, ttl time.Duration) *SearchCache {
	return &SearchCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Key returns the Redis key for k. Filters are query-escaped so a ':' typed
// by the user cannot shift one filter into the next.
func (c *SearchCache) Key(k SearchKey) string {
	return fmt.Sprintf("%s:v%d:%s:%s:%d:%d",
		c.prefix,
		k.Generation,
		url.QueryEscape(normalize(k.Keyword)),
		url.QueryEscape(normalize(k.Location)),
		k.Page,
		k.Limit,
	)
}

func (c *SearchCache) generationKey() string {
	return c.prefix + ":generation"
}

// Generation returns the current cache generation, 0 before the first
// invalidation. Pages written under an older generation are never read again.
func (c *SearchCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey()).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read search cache generation: %w", err)
	}
	return gen, nil
}

// Get decodes the cached page into dst. The boolean is false on a miss.
func (c *SearchCache) Get(ctx context.Context, k SearchKey, dst interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, c.Key(k)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read search cache: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached search page: %w", err)
	}
	return true, nil
}

// Set stores v for k
func (c *SearchCache) Set(ctx context.Context, k SearchKey, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode search page: %w", err)
	}

	if err := c.rdb.Set(ctx, c.Key(k), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write search cache: %w", err)
	}
	return nil
}

// Invalidate bumps the generation and then deletes the cached pages, returning
// how many were removed. A page computed before the bump but written after it
// lands under the old generation and is left to expire.
func (c *SearchCache) Invalidate(ctx context.Context) (int, error) {
	if err := c.rdb.Incr(ctx, c.generationKey()).Err(); err != nil {
		return 0, fmt.Errorf("failed to bump search cache generation: %w", err)
	}

	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.prefix+":v*", scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan search cache: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete search cache keys: %w", err)
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
