// Package payment adapts payment providers to payment.Gateway.
package payment

import (
	"context"
	"fmt"
	"strings"

	dompay "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

// StripeGateway creates hosted Checkout Sessions and refunds payment intents.
type StripeGateway struct {
	api *client.API
	cfg StripeConfig
}

func NewStripeGateway(cfg StripeConfig, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &StripeGateway{api: api, cfg: cfg}
}

var _ dompay.Gateway = (*StripeGateway)(nil)

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req dompay.CheckoutRequest) (*dompay.Session, error) {
	params := checkoutParams(req, g.cfg)
	params.Context = ctx
	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &dompay.Session{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, req dompay.RefundRequest) (*dompay.Refund, error) {
	params := refundParams(req)
	params.Context = ctx
	r, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: refund: %w", err)
	}
	return &dompay.Refund{ID: r.ID, Status: string(r.Status)}, nil
}

func refundParams(req dompay.RefundRequest) *stripe.RefundParams {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(req.PaymentIntentID)}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func checkoutParams(req dompay.CheckoutRequest, cfg StripeConfig) *stripe.CheckoutSessionParams {
	currency := strings.ToLower(req.Currency)
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(cfg.SuccessURL),
		CancelURL:  stripe.String(cfg.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: req.Metadata,
		},
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(li.Name),
			Metadata: li.Metadata,
		}
		if li.Description != "" {
			product.Description = stripe.String(li.Description)
		}
		if li.Image != "" {
			product.Images = stripe.StringSlice([]string{li.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(dompay.MinorUnits(li.UnitAmount)),
				ProductData: product,
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}
	return params
}
