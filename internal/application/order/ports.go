package order

import (
	"context"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	dompayment "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"
)

// PaymentPort is the outbound payment capability used by checkout and refund.
type PaymentPort interface {
	dompayment.Gateway
}

// StoreReader is the slice of the store repository the order workflow reads.
type StoreReader interface {
	FindByID(ctx context.Context, id string) (*catalog.Store, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*catalog.Store, error)
	List(ctx context.Context, f catalog.StoreFilter) ([]*catalog.Store, error)
}

// PartnerReader looks up the partner owning a store.
type PartnerReader interface {
	FindByID(ctx context.Context, role account.Role, id string) (*account.Account, error)
}
