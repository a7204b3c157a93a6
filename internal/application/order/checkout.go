package order

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseCheckout = "order.checkout"
	paymentPeer     = "payment"
	DefaultCurrency = "usd"
)

// CheckoutUseCase validates a basket like order creation but only opens a
// hosted payment session. Stock is not touched and nothing is stored.
type CheckoutUseCase struct {
	stores     StoreReader
	partners   PartnerReader
	products   catalog.ProductRepository
	payments   PaymentPort
	ids        application.IDGenerator
	now        application.Clock
	currency   string
	instrument *application.Instrument
}

func NewCheckoutUseCase(
	stores StoreReader,
	partners PartnerReader,
	products catalog.ProductRepository,
	payments PaymentPort,
	ids application.IDGenerator,
	clock application.Clock,
	currency string,
	tel observability.Observability,
) *CheckoutUseCase {
	if clock == nil {
		clock = application.UTCClock
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return &CheckoutUseCase{
		stores:     stores,
		partners:   partners,
		products:   products,
		payments:   payments,
		ids:        ids,
		now:        clock,
		currency:   currency,
		instrument: application.NewInstrument(orderService, tel),
	}
}

type CheckoutInput struct {
	CustomerID string
	StoreID    string
	Items      []ItemRequest
	Address    string
}

type CheckoutResult struct {
	SessionID string
	URL       string
	// Preview is the order that would be created; it has no id and is not stored.
	Preview *domain.Order
}

func (uc *CheckoutUseCase) Execute(ctx context.Context, cmd CheckoutInput) (res *CheckoutResult, err error) {
	err = uc.instrument.Do(ctx, useCaseCheckout, "Checkout", func(ctx context.Context, run *application.Run) error {
		if cmd.CustomerID == "" {
			run.Status("CUSTOMER_ID_REQUIRED")
			return errs.Validation("Customer ID is required.")
		}
		if verr := validateRequest(cmd.StoreID, cmd.Items); verr != nil {
			run.Status("VALIDATION_FAILED")
			return verr
		}
		now := uc.now()
		b, rerr := resolveBasket(ctx, uc.stores, uc.partners, uc.products, uc.ids, cmd.StoreID, cmd.Items, now)
		if rerr != nil {
			return rerr
		}
		preview := domain.New("", cmd.CustomerID, b.store, b.items, cmd.Address, "", now)

		var session *dompayment.Session
		perr := uc.instrument.External(paymentPeer, "checkout_session", func() error {
			var err error
			session, err = uc.payments.CreateCheckoutSession(ctx, checkoutRequest(preview, uc.currency))
			return err
		})
		if perr != nil {
			run.Status("PAYMENT_SESSION_FAILED")
			return fmt.Errorf("order: checkout session: %w", perr)
		}
		run.Field("session_id", session.ID)
		run.Span.SetAttributes(attribute.String("payment.session_id", session.ID))

		res = &CheckoutResult{SessionID: session.ID, URL: session.URL, Preview: preview}
		return nil
	}, attribute.String("order.store_id", cmd.StoreID))
	return res, err
}

// checkoutRequest bills each order item as one unit priced at the item total.
func checkoutRequest(o *domain.Order, currency string) dompayment.CheckoutRequest {
	lines := make([]dompayment.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, dompayment.LineItem{
			Name:        it.ProductName,
			Description: it.ProductDescription,
			Image:       it.ProductImage,
			UnitAmount:  it.TotalPrice,
			Quantity:    1,
			Metadata: map[string]string{
				"productId": it.ProductID,
				"quantity":  strconv.Itoa(it.Quantity),
			},
		})
	}
	return dompayment.CheckoutRequest{
		LineItems: lines,
		Currency:  currency,
		Metadata: map[string]string{
			"customerId": o.CustomerID,
			"storeId":    o.StoreID,
			"address":    o.Address,
		},
	}
}
