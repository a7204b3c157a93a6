package security

import (
	"testing"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, h.Verify("secret1", hash))
	assert.False(t, h.Verify("secret2", hash))
	assert.False(t, h.Verify("secret1", "not-a-hash"))
}

func TestJWTRoundTripKeepsPartnerStatus(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewJWTSigner("k", "fooddelivery", func() time.Time { return now })

	raw, err := s.Sign(token.Claims{UserID: "p1", Role: account.RolePartner, Status: account.StatusAccepted}, 30*time.Minute)
	require.NoError(t, err)

	c, err := s.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "p1", c.UserID)
	assert.Equal(t, account.RolePartner, c.Role)
	assert.Equal(t, account.StatusAccepted, c.Status)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	s := NewJWTSigner("k", "fooddelivery", func() time.Time { return clock })

	raw, err := s.Sign(token.Claims{UserID: "c1", Role: account.RoleCustomer}, time.Minute)
	require.NoError(t, err)

	clock = now.Add(2 * time.Minute)
	_, err = s.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	clock = now
	other := NewJWTSigner("other-key", "fooddelivery", func() time.Time { return now })
	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRandomTokenGeneratorIsUnique(t *testing.T) {
	var g RandomTokenGenerator
	a, err := g.NewRefreshToken()
	require.NoError(t, err)
	b, err := g.NewRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 86)
}
