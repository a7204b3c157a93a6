package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("jwt: invalid token")

type accessClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
	jwt.RegisteredClaims
}

// JWTSigner issues HS256 access tokens.
type JWTSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTSigner(secret, issuer string, now func() time.Time) *JWTSigner {
	if now == nil {
		now = time.Now
	}
	return &JWTSigner{secret: []byte(secret), issuer: issuer, now: now}
}

func (s *JWTSigner) Sign(c token.Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &accessClaims{
		UserID: c.UserID,
		Role:   string(c.Role),
		Status: string(c.Status),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

func (s *JWTSigner) Parse(raw string) (token.Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return token.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return token.Claims{}, ErrInvalidToken
	}
	role, err := account.ParseRole(claims.Role)
	if err != nil {
		return token.Claims{}, ErrInvalidToken
	}
	return token.Claims{
		UserID: claims.UserID,
		Role:   role,
		Status: account.PartnerStatus(claims.Status),
	}, nil
}
