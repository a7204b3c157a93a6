package token

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
)

var (
	ErrNotFound = errs.InvalidToken("Provided refresh token is not valid")
	ErrExpired  = errs.InvalidToken("Provided refresh token has expired")
)

// Claims is what an access token asserts about its bearer.
type Claims struct {
	UserID string
	Role   account.Role
	Status account.PartnerStatus
}

// ClaimsFor builds the access-token claims for a.
func ClaimsFor(a *account.Account) Claims {
	return Claims{UserID: a.ID, Role: a.Role, Status: a.Status()}
}

// RefreshToken is the single long-lived credential stored per user.
type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	Role      account.Role
	ExpiresIn int
	CreatedAt time.Time
}

func (t *RefreshToken) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt())
}

// Reissue replaces the token material in place and restarts its lifetime
// with ttl.
func (t *RefreshToken) Reissue(token string, ttl time.Duration, now time.Time) {
	t.Token = token
	t.ExpiresIn = int(ttl / time.Second)
	t.CreatedAt = now
}

type Repository interface {
	Insert(ctx context.Context, t *RefreshToken) error
	Update(ctx context.Context, t *RefreshToken) error
	Delete(ctx context.Context, id string) error
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	FindByUser(ctx context.Context, role account.Role, userID string) (*RefreshToken, error)
	// DeleteByUser drops the user's token, if any.
	DeleteByUser(ctx context.Context, role account.Role, userID string) error
}
