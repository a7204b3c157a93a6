package order

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domoutbox "github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"
)

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("id-%d", s.n.Add(1)) }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeGateway struct {
	mu        sync.Mutex
	sessions  []dompayment.CheckoutRequest
	refunds   []dompayment.RefundRequest
	refundErr error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req dompayment.CheckoutRequest) (*dompayment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions = append(g.sessions, req)
	id := fmt.Sprintf("cs_%d", len(g.sessions))
	return &dompayment.Session{ID: id, URL: "https://pay.example/" + id}, nil
}

func (g *fakeGateway) Refund(_ context.Context, req dompayment.RefundRequest) (*dompayment.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, req)
	return &dompayment.Refund{ID: fmt.Sprintf("re_%d", len(g.refunds)), Status: "succeeded"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventName())
	}
	return out
}

// racingProducts loses the first `losses` product updates to a simulated
// concurrent writer.
type racingProducts struct {
	catalog.ProductRepository
	mu     sync.Mutex
	losses int
}

func (r *racingProducts) Update(ctx context.Context, p *catalog.Product) error {
	r.mu.Lock()
	lose := r.losses > 0
	if lose {
		r.losses--
	}
	r.mu.Unlock()
	if lose {
		return errs.ErrConcurrentUpdate
	}
	return r.ProductRepository.Update(ctx, p)
}
