package order

import (
	"context"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
)

var ErrNotStoreOwner = errs.NotAuthorized("Only the owner of the store can view this order.")

// View is an order with its status derived at read time.
type View struct {
	Order  *domain.Order
	Status domain.Status
}

type Queries struct {
	orders domain.Repository
	stores StoreReader
	now    application.Clock
}

func NewQueries(orders domain.Repository, stores StoreReader, clock application.Clock) *Queries {
	if clock == nil {
		clock = application.UTCClock
	}
	return &Queries{orders: orders, stores: stores, now: clock}
}

// List returns the orders visible to caller: customers their own, partners
// those placed at their stores (deleted stores included), admins all of them.
func (q *Queries) List(ctx context.Context, caller token.Claims) ([]View, error) {
	var (
		orders []*domain.Order
		err    error
	)
	switch caller.Role {
	case account.RoleCustomer:
		orders, err = q.orders.ListByCustomer(ctx, caller.UserID)
	case account.RolePartner:
		orders, err = q.orders.ListByPartner(ctx, caller.UserID)
	case account.RoleAdmin:
		orders, err = q.orders.ListAll(ctx)
	default:
		return nil, errs.NotAuthorized("Unknown user type.")
	}
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return q.views(ctx, orders)
}

// Get applies the List visibility rule to a single order.
func (q *Queries) Get(ctx context.Context, caller token.Claims, id string) (*View, error) {
	o, err := q.orders.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	stores, err := q.stores.FindByIDs(ctx, []string{o.StoreID})
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	store := stores[o.StoreID]

	switch caller.Role {
	case account.RoleCustomer:
		if err := o.EnsureCreator(caller.UserID); err != nil {
			return nil, err
		}
	case account.RolePartner:
		if !o.ReceivedBy(caller.UserID) {
			return nil, ErrNotStoreOwner
		}
	case account.RoleAdmin:
	default:
		return nil, errs.NotAuthorized("Unknown user type.")
	}
	return &View{Order: o, Status: domain.StatusOf(o, store, q.now())}, nil
}

func (q *Queries) views(ctx context.Context, orders []*domain.Order) ([]View, error) {
	ids := make([]string, 0, len(orders))
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		if !seen[o.StoreID] {
			seen[o.StoreID] = true
			ids = append(ids, o.StoreID)
		}
	}
	stores, err := q.stores.FindByIDs(ctx, ids)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	now := q.now()
	out := make([]View, 0, len(orders))
	for _, o := range orders {
		out = append(out, View{Order: o, Status: domain.StatusOf(o, stores[o.StoreID], now)})
	}
	return out, nil
}
