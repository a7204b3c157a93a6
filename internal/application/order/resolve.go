package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
)

var (
	ErrNoItems      = errs.Validation("Order must contain at least one item.")
	ErrInvalidStore = errs.Validation("Invalid store ID.")
	ErrStoreClosed  = errs.Validation("Store is not accepting orders.")
	ErrRepository   = errors.New("order: repository failure")
)

type ItemRequest struct {
	ProductID string
	Quantity  int
}

// basket is a validated request: the store, the products it touches and one
// priced item per requested line.
type basket struct {
	store    *catalog.Store
	products map[string]*catalog.Product
	items    []domain.Item
}

func validateRequest(storeID string, items []ItemRequest) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	if strings.TrimSpace(storeID) == "" {
		return ErrInvalidStore
	}
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return errs.Validation("Invalid product ID.")
		}
		if it.Quantity <= 0 {
			return errs.Validation("Quantity for product ID %s must be greater than zero.", it.ProductID)
		}
	}
	return nil
}

// resolveBasket loads the store and products of a request and reserves stock
// on the loaded copies. Nothing is persisted; callers that commit write the
// touched products back.
func resolveBasket(
	ctx context.Context,
	stores StoreReader,
	partners PartnerReader,
	products catalog.ProductRepository,
	ids application.IDGenerator,
	storeID string,
	items []ItemRequest,
	now time.Time,
) (*basket, error) {
	store, err := stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	if err := ensureAccepting(ctx, partners, store); err != nil {
		return nil, err
	}

	b := &basket{store: store, products: make(map[string]*catalog.Product, len(items))}
	for _, it := range items {
		p, ok := b.products[it.ProductID]
		if !ok {
			p, err = products.FindByID(ctx, it.ProductID)
			if errors.Is(err, catalog.ErrProductNotFound) || (err == nil && p.IsDeleted) {
				return nil, errs.NotFound("Product with id %s doesn't exist", it.ProductID)
			}
			if err != nil {
				return nil, wrapRepositoryError(err)
			}
			if p.StoreID != store.ID {
				return nil, domain.ErrMixedStores
			}
			b.products[p.ID] = p
		}
		// snapshot before the reservation mutates the copy
		item := domain.NewItem(ids.NewID(), p, it.Quantity)
		if err := p.Reserve(it.Quantity, now); err != nil {
			return nil, err
		}
		b.items = append(b.items, item)
	}
	return b, nil
}

// ensureAccepting requires the store's partner to exist and be verified.
func ensureAccepting(ctx context.Context, partners PartnerReader, store *catalog.Store) error {
	p, err := partners.FindByID(ctx, account.RolePartner, store.PartnerID)
	if errors.Is(err, account.ErrNotFound) {
		return ErrStoreClosed
	}
	if err != nil {
		return wrapRepositoryError(err)
	}
	if p.Status() != account.StatusAccepted {
		return ErrStoreClosed
	}
	return nil
}

func wrapRepositoryError(err error) error {
	if err == nil || errs.IsKind(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}
