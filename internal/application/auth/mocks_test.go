package auth

import (
	"fmt"
	"sync/atomic"
	"time"
)

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Verify(plain, hash string) bool  { return hash == "hashed:"+plain }

type seqIDs struct {
	prefix string
	n      atomic.Int64
}

func (s *seqIDs) NewID() string { return fmt.Sprintf("%s%d", s.prefix, s.n.Add(1)) }

type seqRefresh struct{ n atomic.Int64 }

func (s *seqRefresh) NewRefreshToken() (string, error) {
	return fmt.Sprintf("refresh-%d", s.n.Add(1)), nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time            { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

