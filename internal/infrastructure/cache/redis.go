// Package cache holds the Redis-backed store-listing cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/application/catalog"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL    = 5 * time.Minute
	generationKey = "stores:gen"
)

// StoreCache keys every listing under a generation counter. Invalidate bumps
// the counter, so stale listings are never read again and expire on their own.
type StoreCache struct {
	client  redis.Cmdable
	baseTTL time.Duration
}

func NewStoreCache(client redis.Cmdable, ttl time.Duration) *StoreCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &StoreCache{client: client, baseTTL: ttl}
}

var _ catalog.StoreListCache = (*StoreCache)(nil)

func (c *StoreCache) Get(ctx context.Context, f domain.StoreFilter) ([]*domain.Store, error) {
	key, err := c.key(ctx, f)
	if err != nil {
		return nil, err
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, catalog.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var stores []*domain.Store
	if err := json.Unmarshal(data, &stores); err != nil {
		return nil, fmt.Errorf("unmarshal stores failed: %w", err)
	}
	return stores, nil
}

func (c *StoreCache) Set(ctx context.Context, f domain.StoreFilter, stores []*domain.Store) error {
	key, err := c.key(ctx, f)
	if err != nil {
		return err
	}
	data, err := json.Marshal(stores)
	if err != nil {
		return fmt.Errorf("marshal stores failed: %w", err)
	}
	jitter := time.Duration(rand.Int63n(int64(c.baseTTL/5) + 1))
	if err := c.client.Set(ctx, key, data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *StoreCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

func (c *StoreCache) key(ctx context.Context, f domain.StoreFilter) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get generation failed: %w", err)
	}
	return fmt.Sprintf("stores:v%d:%s|%s|%s", gen, f.PartnerID, strings.ToLower(f.Category), strings.ToLower(f.City)), nil
}
