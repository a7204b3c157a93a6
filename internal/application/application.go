package application

import (
	"context"
	"time"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

type IDGenerator interface {
	NewID() string
}

// Clock returns the current time. Services take it so deadline rules can be tested.
type Clock func() time.Time

// UTCClock is the production clock.
func UTCClock() time.Time { return time.Now().UTC() }
