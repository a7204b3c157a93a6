package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/application/catalog"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*StoreCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStoreCache(client, time.Minute), mr
}

func sampleStores() []*domain.Store {
	return []*domain.Store{{
		ID:          "s1",
		Name:        "Luigi",
		City:        "Turin",
		DeliveryFee: decimal.RequireFromString("2.50"),
		Coordinates: []domain.Coordinate{{Latitude: 1, Longitude: 2}},
	}}
}

func TestGetMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background(), domain.StoreFilter{})
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	f := domain.StoreFilter{City: "Turin"}

	require.NoError(t, c.Set(ctx, f, sampleStores()))

	got, err := c.Get(ctx, domain.StoreFilter{City: "turin"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Luigi", got[0].Name)
	assert.True(t, got[0].DeliveryFee.Equal(decimal.RequireFromString("2.50")))

	ttl := mr.TTL("stores:v0:||turin")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+12*time.Second)
}

func TestInvalidateDropsEveryListing(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, domain.StoreFilter{}, sampleStores()))
	require.NoError(t, c.Set(ctx, domain.StoreFilter{PartnerID: "p1"}, sampleStores()))
	require.NoError(t, c.Invalidate(ctx))

	_, err := c.Get(ctx, domain.StoreFilter{})
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
	_, err = c.Get(ctx, domain.StoreFilter{PartnerID: "p1"})
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
}

func TestRedisDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), domain.StoreFilter{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrCacheMiss)
}
