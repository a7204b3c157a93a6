package order

import (
	"context"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/persistence"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
)

type Deps struct {
	Orders    domain.Repository
	Stores    StoreReader
	Partners  PartnerReader
	Products  catalog.ProductRepository
	Tx        persistence.Transactor
	Payments  PaymentPort
	Publisher domoutbox.Publisher
	IDs       application.IDGenerator
	Clock     application.Clock
	Currency  string
	Tel       observability.Observability
}

// Service bundles the order use cases behind one facade for the transport layer.
type Service struct {
	create   *CreateOrderUseCase
	checkout *CheckoutUseCase
	cancel   *CancelOrderUseCase
	refund   *RefundOrderUseCase
	queries  *Queries
}

func NewService(d Deps) *Service {
	return &Service{
		create:   NewCreateOrderUseCase(d.Orders, d.Stores, d.Partners, d.Products, d.Tx, d.IDs, d.Publisher, d.Clock, d.Tel),
		checkout: NewCheckoutUseCase(d.Stores, d.Partners, d.Products, d.Payments, d.IDs, d.Clock, d.Currency, d.Tel),
		cancel:   NewCancelOrderUseCase(d.Orders, d.Stores, d.Products, d.Tx, d.Publisher, d.Clock, d.Tel),
		refund:   NewRefundOrderUseCase(d.Orders, d.Stores, d.Products, d.Tx, d.Payments, d.Publisher, d.Clock, d.Tel),
		queries:  NewQueries(d.Orders, d.Stores, d.Clock),
	}
}

func (s *Service) Create(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	return s.create.Execute(ctx, in)
}

func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	return s.checkout.Execute(ctx, in)
}

func (s *Service) Cancel(ctx context.Context, in CancelOrderInput) (*domain.Order, error) {
	return s.cancel.Execute(ctx, in)
}

func (s *Service) Refund(ctx context.Context, in RefundOrderInput) (*RefundOrderResult, error) {
	return s.refund.Execute(ctx, in)
}

func (s *Service) List(ctx context.Context, caller token.Claims) ([]View, error) {
	return s.queries.List(ctx, caller)
}

func (s *Service) Get(ctx context.Context, caller token.Claims, id string) (*View, error) {
	return s.queries.Get(ctx, caller, id)
}

var (
	_ application.UseCase[CreateOrderInput, *CreateOrderResult] = (*CreateOrderUseCase)(nil)
	_ application.UseCase[CheckoutInput, *CheckoutResult]       = (*CheckoutUseCase)(nil)
	_ application.UseCase[CancelOrderInput, *domain.Order]      = (*CancelOrderUseCase)(nil)
	_ application.UseCase[RefundOrderInput, *RefundOrderResult] = (*RefundOrderUseCase)(nil)
)
