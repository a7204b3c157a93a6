package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	dompay "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyGateway struct {
	err   error
	calls int
}

func (g *flakyGateway) CreateCheckoutSession(context.Context, dompay.CheckoutRequest) (*dompay.Session, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &dompay.Session{ID: "cs_1", URL: "https://pay/cs_1"}, nil
}

func (g *flakyGateway) Refund(context.Context, dompay.RefundRequest) (*dompay.Refund, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &dompay.Refund{ID: "re_1", Status: "succeeded"}, nil
}

func TestCheckoutParams(t *testing.T) {
	req := dompay.CheckoutRequest{
		Currency: "USD",
		Metadata: map[string]string{"customerId": "c1"},
		LineItems: []dompay.LineItem{{
			Name:       "Pizza",
			Image:      "http://img/p.jpg",
			UnitAmount: decimal.RequireFromString("20.10"),
			Quantity:   1,
			Metadata:   map[string]string{"productId": "p1", "quantity": "2"},
		}},
	}

	p := checkoutParams(req, StripeConfig{SuccessURL: "http://ok", CancelURL: "http://no"})

	assert.Equal(t, "payment", *p.Mode)
	assert.Equal(t, "http://ok", *p.SuccessURL)
	assert.Equal(t, "c1", p.Metadata["customerId"])
	require.Len(t, p.LineItems, 1)
	li := p.LineItems[0]
	assert.Equal(t, int64(2010), *li.PriceData.UnitAmount)
	assert.Equal(t, "usd", *li.PriceData.Currency)
	assert.Equal(t, int64(1), *li.Quantity)
	assert.Equal(t, "Pizza", *li.PriceData.ProductData.Name)
	assert.Nil(t, li.PriceData.ProductData.Description)
	require.Len(t, li.PriceData.ProductData.Images, 1)
	assert.Equal(t, "p1", li.PriceData.ProductData.Metadata["productId"])
}

func TestSimulatedGatewayAlwaysSucceeds(t *testing.T) {
	g := NewSimulatedGateway(1, 0, "http://localhost")
	ctx := context.Background()

	s, err := g.CreateCheckoutSession(ctx, dompay.CheckoutRequest{LineItems: []dompay.LineItem{{Name: "x", Quantity: 1}}})
	require.NoError(t, err)
	assert.Contains(t, s.URL, s.ID)

	r, err := g.Refund(ctx, dompay.RefundRequest{PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	assert.Equal(t, "succeeded", r.Status)

	_, err = g.Refund(ctx, dompay.RefundRequest{})
	assert.Error(t, err)
}

func TestRefundParamsCarryIdempotencyKey(t *testing.T) {
	p := refundParams(dompay.RefundRequest{
		PaymentIntentID: "pi_1",
		IdempotencyKey:  "order-refund-o1",
		Metadata:        map[string]string{"orderId": "o1"},
	})

	assert.Equal(t, "pi_1", *p.PaymentIntent)
	require.NotNil(t, p.IdempotencyKey)
	assert.Equal(t, "order-refund-o1", *p.IdempotencyKey)
	assert.Equal(t, "o1", p.Metadata["orderId"])

	assert.Nil(t, refundParams(dompay.RefundRequest{PaymentIntentID: "pi_1"}).IdempotencyKey)
}

func TestSimulatedRefundIsIdempotent(t *testing.T) {
	g := NewSimulatedGateway(1, 0, "")
	ctx := context.Background()

	first, err := g.Refund(ctx, dompay.RefundRequest{PaymentIntentID: "pi_1", IdempotencyKey: "k1"})
	require.NoError(t, err)
	again, err := g.Refund(ctx, dompay.RefundRequest{PaymentIntentID: "pi_1", IdempotencyKey: "k1"})
	require.NoError(t, err)
	other, err := g.Refund(ctx, dompay.RefundRequest{PaymentIntentID: "pi_1", IdempotencyKey: "k2"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestSimulatedGatewayHonorsContext(t *testing.T) {
	g := NewSimulatedGateway(1, time.Second, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Refund(ctx, dompay.RefundRequest{PaymentIntentID: "pi_1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	next := &flakyGateway{err: errors.New("connection reset")}
	b := NewBreaker(next, BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.Refund(ctx, dompay.RefundRequest{PaymentIntentID: "pi_1"})
		assert.EqualError(t, err, "connection reset")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.CreateCheckoutSession(ctx, dompay.CheckoutRequest{})
	assert.ErrorIs(t, err, errs.ErrUnavailable)
	assert.Equal(t, 2, next.calls)
}

func TestBreakerIgnoresDomainErrors(t *testing.T) {
	next := &flakyGateway{err: errs.Validation("bad request")}
	b := NewBreaker(next, BreakerConfig{MaxFailures: 1}, nil)

	for i := 0; i < 3; i++ {
		_, err := b.Refund(context.Background(), dompay.RefundRequest{})
		assert.ErrorIs(t, err, errs.ErrValidation)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerPassesResults(t *testing.T) {
	b := NewBreaker(&flakyGateway{}, BreakerConfig{}, nil)

	s, err := b.CreateCheckoutSession(context.Background(), dompay.CheckoutRequest{})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.ID)
}
