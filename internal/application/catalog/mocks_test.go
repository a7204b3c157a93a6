package catalog

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/blob"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return t0 }

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("id-%d", s.n.Add(1)) }

type fakeBlobs struct {
	mu      sync.Mutex
	n       int
	deleted []string
}

func (b *fakeBlobs) Upload(_ context.Context, r io.Reader, name string) (*blob.Object, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.n++
	pid := fmt.Sprintf("blob-%d", b.n)
	return &blob.Object{URL: "/images/" + pid, PublicID: pid}, nil
}

func (b *fakeBlobs) Delete(_ context.Context, publicID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, publicID)
	return nil
}

// mapCache is a StoreListCache counting its traffic.
type mapCache struct {
	mu            sync.Mutex
	entries       map[string][]*domain.Store
	hits, sets    int
	invalidations int
}

func newMapCache() *mapCache { return &mapCache{entries: map[string][]*domain.Store{}} }

func (c *mapCache) Get(_ context.Context, f domain.StoreFilter) ([]*domain.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[listingKey(f)]
	if !ok {
		return nil, ErrCacheMiss
	}
	c.hits++
	return cloneStores(v), nil
}

func (c *mapCache) Set(_ context.Context, f domain.StoreFilter, stores []*domain.Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[listingKey(f)] = cloneStores(stores)
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	c.entries = map[string][]*domain.Store{}
	return nil
}
