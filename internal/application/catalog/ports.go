package catalog

import (
	"context"
	"errors"

	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
)

var ErrCacheMiss = errors.New("catalog: cache miss")

// StoreListCache caches store listings per filter. Invalidate drops every
// cached listing at once.
type StoreListCache interface {
	Get(ctx context.Context, f domain.StoreFilter) ([]*domain.Store, error)
	Set(ctx context.Context, f domain.StoreFilter, stores []*domain.Store) error
	Invalidate(ctx context.Context) error
}

type noCache struct{}

func (noCache) Get(context.Context, domain.StoreFilter) ([]*domain.Store, error) {
	return nil, ErrCacheMiss
}
func (noCache) Set(context.Context, domain.StoreFilter, []*domain.Store) error { return nil }
func (noCache) Invalidate(context.Context) error                              { return nil }
