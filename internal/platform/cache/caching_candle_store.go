// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/candles/usecase"
)

// CachingCandleStore decorates a CandleStore with Redis caching of chart reads.
// Only FindRecent and FindBefore are cached; every write for a symbol drops
// all of that symbol's entries.
type CachingCandleStore struct {
	inner     usecase.CandleStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.CandleStore = (*CachingCandleStore)(nil)

// DefaultTTL is used when NewCachingCandleStore receives a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// NewCachingCandleStore decorates a CandleStore with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "candles".
// A nil rdb disables caching.
func NewCachingCandleStore(rdb *redis.Client, ttl time.Duration, inner usecase.CandleStore, namespace string) *CachingCandleStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "candles"
	}
	return &CachingCandleStore{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindRecent retrieves the newest candles, checking cache first.
func (c *CachingCandleStore) FindRecent(ctx context.Context, symbol string, limit int) ([]entity.Candle, error) {
	key := fmt.Sprintf("%srecent:%d", c.cacheKeyPrefix(symbol), limit)
	return c.readThrough(ctx, key, func() ([]entity.Candle, error) {
		return c.inner.FindRecent(ctx, symbol, limit)
	})
}

// FindBefore retrieves candles older than date, checking cache first.
func (c *CachingCandleStore) FindBefore(ctx context.Context, symbol, date string, limit int) ([]entity.Candle, error) {
	key := fmt.Sprintf("%sbefore:%s:%d", c.cacheKeyPrefix(symbol), safe(date), limit)
	return c.readThrough(ctx, key, func() ([]entity.Candle, error) {
		return c.inner.FindBefore(ctx, symbol, date, limit)
	})
}

func (c *CachingCandleStore) readThrough(ctx context.Context, key string, load func() ([]entity.Candle, error)) ([]entity.Candle, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Candle
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// InsertBatch inserts new candles and invalidates the affected symbols.
func (c *CachingCandleStore) InsertBatch(ctx context.Context, candles []entity.Candle) (int, error) {
	n, err := c.inner.InsertBatch(ctx, candles)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, nil
	}

	seen := map[string]struct{}{}
	for _, cd := range candles {
		if _, ok := seen[cd.Symbol]; ok {
			continue
		}
		seen[cd.Symbol] = struct{}{}
		c.invalidate(ctx, cd.Symbol)
	}
	return n, nil
}

// UpdateMovingAverages writes MA values and invalidates the symbol.
func (c *CachingCandleStore) UpdateMovingAverages(ctx context.Context, symbol string, candles []entity.Candle) error {
	if err := c.inner.UpdateMovingAverages(ctx, symbol, candles); err != nil {
		return err
	}
	c.invalidate(ctx, symbol)
	return nil
}

func (c *CachingCandleStore) ExistingDates(ctx context.Context, symbol string, dates []string) (map[string]bool, error) {
	return c.inner.ExistingDates(ctx, symbol, dates)
}

func (c *CachingCandleStore) FindAllAscending(ctx context.Context, symbol string) ([]entity.Candle, error) {
	return c.inner.FindAllAscending(ctx, symbol)
}

func (c *CachingCandleStore) LatestDate(ctx context.Context, symbol string) (string, error) {
	return c.inner.LatestDate(ctx, symbol)
}

func (c *CachingCandleStore) AllSymbols(ctx context.Context) ([]string, error) {
	return c.inner.AllSymbols(ctx)
}

// invalidate drops every cached read for symbol. Failures are logged, not returned.
func (c *CachingCandleStore) invalidate(ctx context.Context, symbol string) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.cacheKeyPrefix(symbol)+"*"); err != nil {
		slog.Warn("candle cache invalidation failed", "symbol", symbol, "error", err)
	}
}

// cacheKeyPrefix generates a prefix shared by every cached read of symbol.
func (c *CachingCandleStore) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCandleStore) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
