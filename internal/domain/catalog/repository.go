package catalog

import (
	"context"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
)

var (
	ErrStoreNotFound   = errs.NotFound("Store with this id doesn't exist")
	ErrProductNotFound = errs.NotFound("Product with this id doesn't exist")
)

// StoreFilter narrows store listings. Empty fields do not filter; Category and
// City compare case-insensitively.
type StoreFilter struct {
	PartnerID string
	Category  string
	City      string
}

type StoreRepository interface {
	Insert(ctx context.Context, s *Store) error
	Update(ctx context.Context, s *Store) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Store, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*Store, error)
	List(ctx context.Context, f StoreFilter) ([]*Store, error)
}

// ProductRepository persists products. FindByID returns soft-deleted rows too;
// list methods never do. Update fails with errs.ErrConcurrentUpdate when the
// stored version differs from p.Version, and bumps p.Version on success.
type ProductRepository interface {
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	// List returns non-deleted products, restricted to storeID when non-empty.
	List(ctx context.Context, storeID string) ([]*Product, error)
}
