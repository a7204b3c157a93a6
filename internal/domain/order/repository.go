package order

import "context"

// Repository persists orders with their items. Update only persists
// IsCanceled/UpdatedAt and fails with errs.ErrConcurrentUpdate on a version
// mismatch.
type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
}
