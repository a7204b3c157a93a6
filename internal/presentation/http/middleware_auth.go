package httppresentation

import (
	"context"
	"net/http"
	"strings"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/authz"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability/logctx"
)

var (
	errMissingBearer = errs.InvalidToken("Authorization header must be a bearer token")
	errForbidden     = errs.NotAuthorized("You are not allowed to perform this action.")
	errUnverified    = errs.NotAuthorized("Only verified partners can manage stores and products.")
)

type claimsKey struct{}

func withClaims(ctx context.Context, c token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func claimsFrom(ctx context.Context) token.Claims {
	c, _ := ctx.Value(claimsKey{}).(token.Claims)
	return c
}

// TokenValidator resolves a bearer access token into claims.
type TokenValidator interface {
	Validate(ctx context.Context, accessToken string) (token.Claims, error)
}

// Authorizer decides whether claims allow an action on a resource.
type Authorizer interface {
	Can(c token.Claims, resource, action string) (bool, error)
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

// Authenticate rejects requests without a valid access token and stores the
// claims on the request context.
func Authenticate(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				writeDomainError(w, r, errMissingBearer)
				return
			}
			claims, err := v.Validate(r.Context(), raw)
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			ctx := logctx.Enrich(withClaims(r.Context(), claims),
				observability.F("user_id", claims.UserID),
				observability.F("role", string(claims.Role)),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission runs after Authenticate.
func RequirePermission(a Authorizer, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r.Context())
			ok, err := a.Can(claims, resource, action)
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			if !ok {
				writeDomainError(w, r, denial(claims, resource))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denial(c token.Claims, resource string) error {
	if c.Role == account.RolePartner && c.Status != account.StatusAccepted &&
		(resource == authz.ResourceStores || resource == authz.ResourceProducts) {
		return errUnverified
	}
	return errForbidden
}
