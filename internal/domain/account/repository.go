package account

import (
	"context"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
)

var (
	ErrNotFound  = errs.NotFound("account: not found")
	ErrDuplicate = errs.Conflict("account: duplicate username or email")
)

// Repository persists accounts. Every lookup is scoped to one role table.
type Repository interface {
	Insert(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, role Role, id string) error
	FindByID(ctx context.Context, role Role, id string) (*Account, error)
	FindByUsername(ctx context.Context, role Role, username string) (*Account, error)
	ExistsByUsername(ctx context.Context, role Role, username string) (bool, error)
	ExistsByEmail(ctx context.Context, role Role, email string) (bool, error)
	List(ctx context.Context, role Role) ([]*Account, error)
	// ListPartners returns partners, filtered by status when status is non-empty.
	ListPartners(ctx context.Context, status PartnerStatus) ([]*Account, error)
}
