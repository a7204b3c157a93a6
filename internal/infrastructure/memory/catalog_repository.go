package memory

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
)

type StoreRepository struct{ db *DB }

func NewStoreRepository(db *DB) *StoreRepository { return &StoreRepository{db: db} }

func (r *StoreRepository) Insert(ctx context.Context, s *domain.Store) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("store repository: id is required")
	}
	return r.db.write(ctx, func() error {
		if _, exists := r.db.stores[s.ID]; exists {
			return errs.Conflict("store: already exists")
		}
		r.db.stores[s.ID] = s.Clone()
		return nil
	})
}

func (r *StoreRepository) Update(ctx context.Context, s *domain.Store) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("store repository: id is required")
	}
	return r.db.write(ctx, func() error {
		if _, exists := r.db.stores[s.ID]; !exists {
			return domain.ErrStoreNotFound
		}
		r.db.stores[s.ID] = s.Clone()
		return nil
	})
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func() error {
		if _, exists := r.db.stores[id]; !exists {
			return domain.ErrStoreNotFound
		}
		delete(r.db.stores, id)
		return nil
	})
}

func (r *StoreRepository) FindByID(_ context.Context, id string) (out *domain.Store, err error) {
	r.db.read(func() {
		s, ok := r.db.stores[id]
		if !ok {
			err = domain.ErrStoreNotFound
			return
		}
		out = s.Clone()
	})
	return out, err
}

func (r *StoreRepository) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Store, error) {
	out := make(map[string]*domain.Store, len(ids))
	r.db.read(func() {
		for _, id := range ids {
			if s, ok := r.db.stores[id]; ok {
				out[id] = s.Clone()
			}
		}
	})
	return out, nil
}

func (r *StoreRepository) List(_ context.Context, f domain.StoreFilter) (out []*domain.Store, err error) {
	r.db.read(func() {
		for _, s := range r.db.stores {
			if f.PartnerID != "" && s.PartnerID != f.PartnerID {
				continue
			}
			if f.Category != "" && !strings.EqualFold(s.Category, f.Category) {
				continue
			}
			if f.City != "" && !strings.EqualFold(s.City, f.City) {
				continue
			}
			out = append(out, s.Clone())
		}
	})
	sortByCreated(out, func(s *domain.Store) (int64, string) { return s.CreatedAt.UnixNano(), s.ID })
	return out, err
}

type ProductRepository struct{ db *DB }

func NewProductRepository(db *DB) *ProductRepository { return &ProductRepository{db: db} }

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}
	return r.db.write(ctx, func() error {
		if _, exists := r.db.products[p.ID]; exists {
			return errs.Conflict("product: already exists")
		}
		p.Version = 1
		r.db.products[p.ID] = p.Clone()
		return nil
	})
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}
	return r.db.write(ctx, func() error {
		stored, exists := r.db.products[p.ID]
		if !exists {
			return domain.ErrProductNotFound
		}
		if stored.Version != p.Version {
			return errs.ErrConcurrentUpdate
		}
		next := p.Clone()
		next.Version++
		r.db.products[p.ID] = next
		p.Version = next.Version
		return nil
	})
}

func (r *ProductRepository) FindByID(_ context.Context, id string) (out *domain.Product, err error) {
	r.db.read(func() {
		p, ok := r.db.products[id]
		if !ok {
			err = domain.ErrProductNotFound
			return
		}
		out = p.Clone()
	})
	return out, err
}

func (r *ProductRepository) List(_ context.Context, storeID string) (out []*domain.Product, err error) {
	r.db.read(func() {
		for _, p := range r.db.products {
			if p.IsDeleted {
				continue
			}
			if storeID != "" && p.StoreID != storeID {
				continue
			}
			out = append(out, p.Clone())
		}
	})
	sortByCreated(out, func(p *domain.Product) (int64, string) { return p.CreatedAt.UnixNano(), p.ID })
	return out, err
}
