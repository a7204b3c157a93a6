package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// LineItem is one row of a hosted checkout page.
type LineItem struct {
	Name        string
	Description string
	Image       string
	UnitAmount  decimal.Decimal
	Quantity    int64
	Metadata    map[string]string
}

type CheckoutRequest struct {
	LineItems []LineItem
	Metadata  map[string]string
	Currency  string
}

type Session struct {
	ID  string
	URL string
}

type RefundRequest struct {
	PaymentIntentID string
	// IdempotencyKey makes repeated requests refund at most once.
	IdempotencyKey  string
	Metadata        map[string]string
}

type Refund struct {
	ID     string
	Status string
}

// Gateway is the external payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	Refund(ctx context.Context, req RefundRequest) (*Refund, error)
}

// MinorUnits converts an amount to the integer cents representation providers expect.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
