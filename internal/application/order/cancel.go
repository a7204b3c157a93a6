package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/persistence"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseCancel = "order.cancel"
	useCaseRefund = "order.refund"
)

var ErrNoPayment = errs.Validation("Order has no payment to refund")

// canceler performs the terminal transition shared by cancel and refund:
// mark the order canceled and give every item back to stock.
type canceler struct {
	orders   domain.Repository
	stores   StoreReader
	products catalog.ProductRepository
	tx       persistence.Transactor
}

// load returns the order and its store for a creator check. A deleted store
// yields a nil store.
func (c *canceler) load(ctx context.Context, orderID, customerID string) (*domain.Order, *catalog.Store, error) {
	o, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, wrapRepositoryError(err)
	}
	if err := o.EnsureCreator(customerID); err != nil {
		return nil, nil, err
	}
	store, err := c.stores.FindByID(ctx, o.StoreID)
	if errors.Is(err, catalog.ErrStoreNotFound) {
		return o, nil, nil
	}
	if err != nil {
		return nil, nil, wrapRepositoryError(err)
	}
	return o, store, nil
}

func (c *canceler) cancel(ctx context.Context, orderID, customerID string, now time.Time) (*domain.Order, int, error) {
	var (
		canceled *domain.Order
		attempts int
		err      error
	)
	for attempts = 1; attempts <= maxAttempts; attempts++ {
		err = c.tx.WithinTx(ctx, func(ctx context.Context) error {
			o, store, err := c.load(ctx, orderID, customerID)
			if err != nil {
				return err
			}
			if err := o.Cancel(store, now); err != nil {
				return err
			}
			for _, it := range o.Items {
				p, err := c.products.FindByID(ctx, it.ProductID)
				if err != nil {
					return err
				}
				p.Restock(it.Quantity, now)
				if err := c.products.Update(ctx, p); err != nil {
					return err
				}
			}
			if err := c.orders.Update(ctx, o); err != nil {
				return err
			}
			canceled = o
			return nil
		})
		if !errors.Is(err, errs.ErrConcurrentUpdate) {
			break
		}
	}
	if attempts > maxAttempts {
		attempts = maxAttempts
	}
	if err != nil {
		return nil, attempts, wrapRepositoryError(err)
	}
	return canceled, attempts, nil
}

type CancelOrderUseCase struct {
	canceler
	publisher  domoutbox.Publisher
	now        application.Clock
	instrument *application.Instrument
}

func NewCancelOrderUseCase(
	orders domain.Repository,
	stores StoreReader,
	products catalog.ProductRepository,
	tx persistence.Transactor,
	publisher domoutbox.Publisher,
	clock application.Clock,
	tel observability.Observability,
) *CancelOrderUseCase {
	if clock == nil {
		clock = application.UTCClock
	}
	return &CancelOrderUseCase{
		canceler:   canceler{orders: orders, stores: stores, products: products, tx: tx},
		publisher:  publisher,
		now:        clock,
		instrument: application.NewInstrument(orderService, tel),
	}
}

type CancelOrderInput struct {
	OrderID    string
	CustomerID string
}

// Execute cancels an order of its creator before the delivery deadline.
func (uc *CancelOrderUseCase) Execute(ctx context.Context, cmd CancelOrderInput) (o *domain.Order, err error) {
	err = uc.instrument.Do(ctx, useCaseCancel, "CancelOrder", func(ctx context.Context, run *application.Run) error {
		now := uc.now()
		canceled, attempts, cerr := uc.cancel(ctx, cmd.OrderID, cmd.CustomerID, now)
		run.Field("attempts", attempts)
		if cerr != nil {
			return cerr
		}
		uc.instrument.Publish(ctx, run, uc.publisher, domain.NewCanceledEvent(canceled, now))
		o = canceled
		return nil
	}, attribute.String("order.id", cmd.OrderID))
	return o, err
}

type RefundOrderUseCase struct {
	canceler
	payments   PaymentPort
	publisher  domoutbox.Publisher
	now        application.Clock
	instrument *application.Instrument
}

func NewRefundOrderUseCase(
	orders domain.Repository,
	stores StoreReader,
	products catalog.ProductRepository,
	tx persistence.Transactor,
	payments PaymentPort,
	publisher domoutbox.Publisher,
	clock application.Clock,
	tel observability.Observability,
) *RefundOrderUseCase {
	if clock == nil {
		clock = application.UTCClock
	}
	return &RefundOrderUseCase{
		canceler:   canceler{orders: orders, stores: stores, products: products, tx: tx},
		payments:   payments,
		publisher:  publisher,
		now:        clock,
		instrument: application.NewInstrument(orderService, tel),
	}
}

type RefundOrderInput struct {
	OrderID    string
	CustomerID string
}

type RefundOrderResult struct {
	Order    *domain.Order
	RefundID string
}

// Execute refunds the payment of a cancelable order, then cancels it. The
// gateway is called only after every cancel check passed.
func (uc *RefundOrderUseCase) Execute(ctx context.Context, cmd RefundOrderInput) (res *RefundOrderResult, err error) {
	err = uc.instrument.Do(ctx, useCaseRefund, "RefundOrder", func(ctx context.Context, run *application.Run) error {
		now := uc.now()
		o, store, lerr := uc.load(ctx, cmd.OrderID, cmd.CustomerID)
		if lerr != nil {
			return lerr
		}
		if o.PaymentIntentID == "" {
			run.Status("NO_PAYMENT")
			return ErrNoPayment
		}
		if err := o.EnsureCancelable(store, now); err != nil {
			return err
		}

		var refund *dompayment.Refund
		perr := uc.instrument.External(paymentPeer, "refund", func() error {
			var err error
			refund, err = uc.payments.Refund(ctx, dompayment.RefundRequest{
				PaymentIntentID: o.PaymentIntentID,
				IdempotencyKey:  refundKey(o.ID),
				Metadata:        map[string]string{"orderId": o.ID, "customerId": o.CustomerID},
			})
			return err
		})
		if perr != nil {
			run.Status("REFUND_FAILED")
			return fmt.Errorf("order: refund: %w", perr)
		}
		run.Field("refund_id", refund.ID)

		canceled, attempts, cerr := uc.cancel(ctx, cmd.OrderID, cmd.CustomerID, now)
		run.Field("attempts", attempts)
		if cerr != nil {
			run.Status("REFUNDED_CANCEL_FAILED")
			return cerr
		}
		uc.instrument.Publish(ctx, run, uc.publisher, domain.NewRefundedEvent(canceled, refund.ID, now))
		res = &RefundOrderResult{Order: canceled, RefundID: refund.ID}
		return nil
	}, attribute.String("order.id", cmd.OrderID))
	return res, err
}

// refundKey lets the provider collapse concurrent refunds of one order.
func refundKey(orderID string) string { return "order-refund-" + orderID }
