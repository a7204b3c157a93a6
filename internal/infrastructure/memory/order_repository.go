package memory

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
)

type OrderRepository struct{ db *DB }

func NewOrderRepository(db *DB) *OrderRepository { return &OrderRepository{db: db} }

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	return r.db.write(ctx, func() error {
		if _, exists := r.db.orders[o.ID]; exists {
			return errs.Conflict("order: already exists")
		}
		o.Version = 1
		r.db.orders[o.ID] = o.Clone()
		return nil
	})
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	return r.db.write(ctx, func() error {
		stored, exists := r.db.orders[o.ID]
		if !exists {
			return domain.ErrNotFound
		}
		if stored.Version != o.Version {
			return errs.ErrConcurrentUpdate
		}
		next := stored.Clone()
		next.IsCanceled = o.IsCanceled
		next.UpdatedAt = o.UpdatedAt
		next.Version++
		r.db.orders[o.ID] = next
		o.Version = next.Version
		return nil
	})
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (out *domain.Order, err error) {
	r.db.read(func() {
		o, ok := r.db.orders[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		out = o.Clone()
	})
	return out, err
}

func (r *OrderRepository) ListByCustomer(_ context.Context, customerID string) ([]*domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (r *OrderRepository) ListByPartner(_ context.Context, partnerID string) ([]*domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.ReceivedBy(partnerID) }), nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]*domain.Order, error) {
	return r.list(func(*domain.Order) bool { return true }), nil
}

func (r *OrderRepository) list(match func(*domain.Order) bool) (out []*domain.Order) {
	r.db.read(func() {
		for _, o := range r.db.orders {
			if match(o) {
				out = append(out, o.Clone())
			}
		}
	})
	sortByCreated(out, func(o *domain.Order) (int64, string) { return o.CreatedAt.UnixNano(), o.ID })
	return out
}
