package auth

import (
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
)

// Signer issues and validates access tokens.
type Signer interface {
	Sign(claims token.Claims, ttl time.Duration) (string, error)
	Parse(raw string) (token.Claims, error)
}

// RefreshGenerator mints opaque refresh-token material.
type RefreshGenerator interface {
	NewRefreshToken() (string, error)
}
