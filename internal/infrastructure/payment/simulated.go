package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	dompay "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"

	"github.com/google/uuid"
)

var ErrDeclined = errors.New("payment: simulated provider declined")

// SimulatedGateway stands in for a provider in development. Each call
// succeeds with probability SuccessRate after an optional latency. Refunds
// sharing an idempotency key return the first result.
type SimulatedGateway struct {
	mu          sync.Mutex
	random      *rand.Rand
	refunds     map[string]*dompay.Refund
	successRate float64
	latency     time.Duration
	baseURL     string
}

func NewSimulatedGateway(successRate float64, latency time.Duration, baseURL string) *SimulatedGateway {
	if successRate <= 0 || successRate > 1 {
		successRate = 1
	}
	return &SimulatedGateway{
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		refunds:     make(map[string]*dompay.Refund),
		successRate: successRate,
		latency:     latency,
		baseURL:     baseURL,
	}
}

var _ dompay.Gateway = (*SimulatedGateway)(nil)

func (g *SimulatedGateway) CreateCheckoutSession(ctx context.Context, req dompay.CheckoutRequest) (*dompay.Session, error) {
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("payment: checkout session needs line items")
	}
	if err := g.simulate(ctx); err != nil {
		return nil, err
	}
	id := "cs_sim_" + uuid.NewString()
	return &dompay.Session{ID: id, URL: g.baseURL + "/checkout/" + id}, nil
}

func (g *SimulatedGateway) Refund(ctx context.Context, req dompay.RefundRequest) (*dompay.Refund, error) {
	if req.PaymentIntentID == "" {
		return nil, fmt.Errorf("payment: refund needs a payment intent")
	}
	if r, ok := g.replay(req.IdempotencyKey); ok {
		return r, nil
	}
	if err := g.simulate(ctx); err != nil {
		return nil, err
	}
	r := &dompay.Refund{ID: "re_sim_" + uuid.NewString(), Status: "succeeded"}
	if req.IdempotencyKey == "" {
		return r, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.refunds[req.IdempotencyKey]; ok {
		return cloneRefund(prev), nil
	}
	g.refunds[req.IdempotencyKey] = r
	return cloneRefund(r), nil
}

func (g *SimulatedGateway) replay(key string) (*dompay.Refund, bool) {
	if key == "" {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.refunds[key]
	if !ok {
		return nil, false
	}
	return cloneRefund(r), true
}

func cloneRefund(r *dompay.Refund) *dompay.Refund {
	c := *r
	return &c
}

func (g *SimulatedGateway) simulate(ctx context.Context) error {
	if g.latency > 0 {
		t := time.NewTimer(g.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	g.mu.Lock()
	roll := g.random.Float64()
	g.mu.Unlock()
	if roll >= g.successRate {
		return ErrDeclined
	}
	return nil
}
