package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/blob"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/persistence"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

const (
	catalogService = "catalog-service"

	useCaseCreateStore        = "catalog.create_store"
	useCaseUpdateStore        = "catalog.update_store"
	useCaseDeleteStore        = "catalog.delete_store"
	useCaseUploadStoreImage   = "catalog.upload_store_image"
	useCaseCreateProduct      = "catalog.create_product"
	useCaseUpdateProduct      = "catalog.update_product"
	useCaseDeleteProduct      = "catalog.delete_product"
	useCaseUploadProductImage = "catalog.upload_product_image"

	blobPeer = "blob"
)

var (
	ErrNotVerified = errs.NotAuthorized("Only verified partners can manage stores and products.")
	ErrNotOwner    = errs.NotAuthorized("Only the owner of the store can perform this action.")
	ErrRepository  = errors.New("catalog: repository failure")
)

// Service manages stores and their products.
type Service struct {
	stores     domain.StoreRepository
	products   domain.ProductRepository
	tx         persistence.Transactor
	blobs      blob.Store
	cache      StoreListCache
	listings   singleflight.Group
	ids        application.IDGenerator
	now        application.Clock
	instrument *application.Instrument
}

func NewService(
	stores domain.StoreRepository,
	products domain.ProductRepository,
	tx persistence.Transactor,
	blobs blob.Store,
	cache StoreListCache,
	ids application.IDGenerator,
	clock application.Clock,
	tel observability.Observability,
) *Service {
	if cache == nil {
		cache = noCache{}
	}
	if clock == nil {
		clock = application.UTCClock
	}
	return &Service{
		stores:     stores,
		products:   products,
		tx:         tx,
		blobs:      blobs,
		cache:      cache,
		ids:        ids,
		now:        clock,
		instrument: application.NewInstrument(catalogService, tel),
	}
}

func (s *Service) CreateStore(ctx context.Context, caller token.Claims, d domain.StoreDetails) (store *domain.Store, err error) {
	err = s.instrument.Do(ctx, useCaseCreateStore, "CreateStore", func(ctx context.Context, run *application.Run) error {
		if err := ensureVerified(caller); err != nil {
			return err
		}
		if problems := storeProblems(d, false); len(problems) > 0 {
			run.Status("VALIDATION_FAILED")
			return errs.Validation("%s", strings.Join(problems, ", "))
		}
		created := domain.NewStore(s.ids.NewID(), caller.UserID, d, s.now())
		if err := s.stores.Insert(ctx, created); err != nil {
			return wrapRepositoryError(err)
		}
		run.Field("store_id", created.ID)
		s.invalidate(ctx, run)
		store = created
		return nil
	})
	return store, err
}

func (s *Service) UpdateStore(ctx context.Context, caller token.Claims, id string, d domain.StoreDetails) (store *domain.Store, err error) {
	err = s.instrument.Do(ctx, useCaseUpdateStore, "UpdateStore", func(ctx context.Context, run *application.Run) error {
		if err := ensureVerified(caller); err != nil {
			return err
		}
		if problems := storeProblems(d, true); len(problems) > 0 {
			run.Status("VALIDATION_FAILED")
			return errs.Validation("%s", strings.Join(problems, ", "))
		}
		current, ferr := s.ownedStore(ctx, caller, id)
		if ferr != nil {
			return ferr
		}
		current.Apply(d, s.now())
		if err := s.stores.Update(ctx, current); err != nil {
			return wrapRepositoryError(err)
		}
		s.invalidate(ctx, run)
		store = current
		return nil
	}, attribute.String("store.id", id))
	return store, err
}

// DeleteStore removes the store and soft-deletes its products. Admins may
// delete any store; verified partners only their own.
func (s *Service) DeleteStore(ctx context.Context, caller token.Claims, id string) error {
	return s.instrument.Do(ctx, useCaseDeleteStore, "DeleteStore", func(ctx context.Context, run *application.Run) error {
		var image string
		terr := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			var (
				store *domain.Store
				err   error
			)
			if caller.Role == account.RoleAdmin {
				store, err = s.findStore(ctx, id)
			} else {
				if err := ensureVerified(caller); err != nil {
					return err
				}
				store, err = s.ownedStore(ctx, caller, id)
			}
			if err != nil {
				return err
			}
			products, err := s.products.List(ctx, store.ID)
			if err != nil {
				return err
			}
			now := s.now()
			for _, p := range products {
				p.SoftDelete(now)
				if err := s.products.Update(ctx, p); err != nil {
					return err
				}
			}
			run.Field("products_deleted", len(products))
			image = store.ImagePublicID
			return s.stores.Delete(ctx, store.ID)
		})
		if terr != nil {
			return wrapRepositoryError(terr)
		}
		s.invalidate(ctx, run)
		if image != "" {
			s.dropBlob(ctx, run, image)
		}
		return nil
	}, attribute.String("store.id", id))
}

func (s *Service) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	return s.findStore(ctx, id)
}

// ListStores serves listings from the cache. Concurrent misses for the same
// filter share one repository read.
func (s *Service) ListStores(ctx context.Context, f domain.StoreFilter) ([]*domain.Store, error) {
	logger := s.instrument.Logger(ctx, "catalog.list_stores")
	if cached, err := s.cache.Get(ctx, f); err == nil {
		return cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("store_cache_get_failed", observability.Err(err))
	}

	v, err, _ := s.listings.Do(listingKey(f), func() (interface{}, error) {
		stores, err := s.stores.List(ctx, f)
		if err != nil {
			return nil, wrapRepositoryError(err)
		}
		if err := s.cache.Set(ctx, f, stores); err != nil {
			logger.Warn("store_cache_set_failed", observability.Err(err))
		}
		return stores, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneStores(v.([]*domain.Store)), nil
}

func (s *Service) UploadStoreImage(ctx context.Context, caller token.Claims, id string, r io.Reader, name string) (store *domain.Store, err error) {
	err = s.instrument.Do(ctx, useCaseUploadStoreImage, "UploadStoreImage", func(ctx context.Context, run *application.Run) error {
		if err := ensureVerified(caller); err != nil {
			return err
		}
		current, ferr := s.ownedStore(ctx, caller, id)
		if ferr != nil {
			return ferr
		}
		obj, uerr := s.upload(ctx, r, name)
		if uerr != nil {
			run.Status("BLOB_UPLOAD_FAILED")
			return uerr
		}
		previous := current.ImagePublicID
		current.SetImage(obj.URL, obj.PublicID, s.now())
		if err := s.stores.Update(ctx, current); err != nil {
			s.dropBlob(ctx, run, obj.PublicID)
			return wrapRepositoryError(err)
		}
		if previous != "" {
			s.dropBlob(ctx, run, previous)
		}
		s.invalidate(ctx, run)
		store = current
		return nil
	}, attribute.String("store.id", id))
	return store, err
}

func (s *Service) CreateProduct(ctx context.Context, caller token.Claims, storeID string, d domain.ProductDetails) (product *domain.Product, err error) {
	err = s.instrument.Do(ctx, useCaseCreateProduct, "CreateProduct", func(ctx context.Context, run *application.Run) error {
		if err := ensureVerified(caller); err != nil {
			return err
		}
		if problems := productProblems(d, false); len(problems) > 0 {
			run.Status("VALIDATION_FAILED")
			return errs.Validation("%s", strings.Join(problems, ", "))
		}
		if _, err := s.ownedStore(ctx, caller, storeID); err != nil {
			return err
		}
		created := domain.NewProduct(s.ids.NewID(), storeID, d, s.now())
		if err := s.products.Insert(ctx, created); err != nil {
			return wrapRepositoryError(err)
		}
		run.Field("product_id", created.ID)
		product = created
		return nil
	}, attribute.String("store.id", storeID))
	return product, err
}

func (s *Service) UpdateProduct(ctx context.Context, caller token.Claims, id string, d domain.ProductDetails) (product *domain.Product, err error) {
	err = s.instrument.Do(ctx, useCaseUpdateProduct, "UpdateProduct", func(ctx context.Context, run *application.Run) error {
		if err := ensureVerified(caller); err != nil {
			return err
		}
		if problems := productProblems(d, true); len(problems) > 0 {
			run.Status("VALIDATION_FAILED")
			return errs.Validation("%s", strings.Join(problems, ", "))
		}
		current, ferr := s.ownedProduct(ctx, caller, id)
		if ferr != nil {
			return ferr
		}
		current.Apply(d, s.now())
		if err := s.products.Update(ctx, current); err != nil {
			return wrapRepositoryError(err)
		}
		product = current
		return nil
	}, attribute.String("product.id", id))
	return product, err
}

// DeleteProduct soft-deletes so existing order items keep their reference.
func (s *Service) DeleteProduct(ctx context.Context, caller token.Claims, id string) error {
	return s.instrument.Do(ctx, useCaseDeleteProduct, "DeleteProduct", func(ctx context.Context, run *application.Run) error {
		if err := ensureVerified(caller); err != nil {
			return err
		}
		current, err := s.ownedProduct(ctx, caller, id)
		if err != nil {
			return err
		}
		current.SoftDelete(s.now())
		return wrapRepositoryError(s.products.Update(ctx, current))
	}, attribute.String("product.id", id))
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.findProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, storeID string) ([]*domain.Product, error) {
	out, err := s.products.List(ctx, storeID)
	return out, wrapRepositoryError(err)
}

func (s *Service) UploadProductImage(ctx context.Context, caller token.Claims, id string, r io.Reader, name string) (product *domain.Product, err error) {
	err = s.instrument.Do(ctx, useCaseUploadProductImage, "UploadProductImage", func(ctx context.Context, run *application.Run) error {
		if err := ensureVerified(caller); err != nil {
			return err
		}
		current, ferr := s.ownedProduct(ctx, caller, id)
		if ferr != nil {
			return ferr
		}
		obj, uerr := s.upload(ctx, r, name)
		if uerr != nil {
			run.Status("BLOB_UPLOAD_FAILED")
			return uerr
		}
		previous := current.ImagePublicID
		current.SetImage(obj.URL, obj.PublicID, s.now())
		if err := s.products.Update(ctx, current); err != nil {
			s.dropBlob(ctx, run, obj.PublicID)
			return wrapRepositoryError(err)
		}
		if previous != "" {
			s.dropBlob(ctx, run, previous)
		}
		product = current
		return nil
	}, attribute.String("product.id", id))
	return product, err
}

func (s *Service) findStore(ctx context.Context, id string) (*domain.Store, error) {
	store, err := s.stores.FindByID(ctx, id)
	return store, wrapRepositoryError(err)
}

func (s *Service) ownedStore(ctx context.Context, caller token.Claims, id string) (*domain.Store, error) {
	store, err := s.findStore(ctx, id)
	if err != nil {
		return nil, err
	}
	if !store.OwnedBy(caller.UserID) {
		return nil, ErrNotOwner
	}
	return store, nil
}

// findProduct hides soft-deleted products.
func (s *Service) findProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	if p.IsDeleted {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *Service) ownedProduct(ctx context.Context, caller token.Claims, id string) (*domain.Product, error) {
	p, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedStore(ctx, caller, p.StoreID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) upload(ctx context.Context, r io.Reader, name string) (*blob.Object, error) {
	var obj *blob.Object
	err := s.instrument.External(blobPeer, "upload", func() error {
		var err error
		obj, err = s.blobs.Upload(ctx, r, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: upload image: %w", err)
	}
	return obj, nil
}

func (s *Service) dropBlob(ctx context.Context, run *application.Run, publicID string) {
	err := s.instrument.External(blobPeer, "delete", func() error {
		return s.blobs.Delete(ctx, publicID)
	})
	if err != nil {
		run.Field("blob_delete_error", err.Error())
	}
}

func (s *Service) invalidate(ctx context.Context, run *application.Run) {
	if err := s.cache.Invalidate(ctx); err != nil {
		run.Field("cache_invalidate_error", err.Error())
	}
}

func ensureVerified(caller token.Claims) error {
	if caller.Role != account.RolePartner || caller.Status != account.StatusAccepted {
		return ErrNotVerified
	}
	return nil
}

type requiredField struct{ value, msg string }

func storeProblems(d domain.StoreDetails, full bool) []string {
	var problems []string
	required := []requiredField{
		{d.Name, "Name is required"},
		{d.Description, "Description is required"},
	}
	if full {
		required = append(required,
			requiredField{d.Address, "Address is required"},
			requiredField{d.City, "City is required"},
			requiredField{d.PostalCode, "Postal code is required"},
			requiredField{d.Phone, "Phone is required"},
		)
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, r.msg)
		}
	}
	if len(d.Coordinates) == 0 {
		problems = append(problems, "Coordinates are required")
	}
	if d.DeliveryFee.IsNegative() {
		problems = append(problems, "Delivery fee must not be negative")
	}
	if d.DeliveryTimeInMinutes < 0 {
		problems = append(problems, "Delivery time must not be negative")
	}
	return problems
}

func productProblems(d domain.ProductDetails, requireDescription bool) []string {
	var problems []string
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "Name is required")
	}
	if requireDescription && strings.TrimSpace(d.Description) == "" {
		problems = append(problems, "Description is required")
	}
	if !d.Price.IsPositive() {
		problems = append(problems, "Price must be greater than zero")
	}
	if d.Quantity < 0 {
		problems = append(problems, "Quantity must not be negative")
	}
	return problems
}

func listingKey(f domain.StoreFilter) string {
	return f.PartnerID + "|" + strings.ToLower(f.Category) + "|" + strings.ToLower(f.City)
}

func cloneStores(in []*domain.Store) []*domain.Store {
	out := make([]*domain.Store, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func wrapRepositoryError(err error) error {
	if err == nil || errs.IsKind(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}
