package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	db       *memory.DB
	accounts *memory.AccountRepository
	tokens   *memory.TokenRepository
	clock    *fakeClock
	signer   *security.JWTSigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	f := &fixture{
		db:       db,
		accounts: memory.NewAccountRepository(db),
		tokens:   memory.NewTokenRepository(db),
		clock:    &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.signer = security.NewJWTSigner("test-secret", "test", f.clock.Now)
	f.svc = NewService(f.accounts, f.tokens, db, plainHasher{}, f.signer, &seqRefresh{}, &seqIDs{prefix: "tok-"}, f.clock.Now, Config{}, nil)
	return f
}

func (f *fixture) seed(t *testing.T, id string, role account.Role, username, password string) *account.Account {
	t.Helper()
	a := account.New(id, role, account.Profile{Username: username, Email: username + "@example.com"}, "hashed:"+password, f.clock.now)
	require.NoError(t, f.accounts.Insert(context.Background(), a))
	return a
}

func passwordGrant(role, username, password string) GrantCommand {
	return GrantCommand{GrantType: GrantPassword, UserType: role, Username: username, Password: password}
}

func TestPasswordGrantIssuesPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "c1", account.RoleCustomer, "alice", "secret1")

	pair, err := f.svc.Grant(ctx, passwordGrant("Customer", "alice", "secret1"))
	require.NoError(t, err)
	assert.Equal(t, 1800, pair.ExpiresIn)
	assert.Equal(t, f.clock.now.Unix(), pair.IssuedAt)
	assert.Equal(t, "refresh-1", pair.RefreshToken)

	claims, err := f.svc.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, token.Claims{UserID: "c1", Role: account.RoleCustomer}, claims)

	stored, err := f.tokens.FindByUser(ctx, account.RoleCustomer, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2592000, stored.ExpiresIn)
}

func TestReloginOverwritesRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "c1", account.RoleCustomer, "alice", "secret1")

	first, err := f.svc.Grant(ctx, passwordGrant("customer", "alice", "secret1"))
	require.NoError(t, err)
	before, err := f.tokens.FindByUser(ctx, account.RoleCustomer, "c1")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second, err := f.svc.Grant(ctx, passwordGrant("customer", "alice", "secret1"))
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	after, err := f.tokens.FindByUser(ctx, account.RoleCustomer, "c1")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, second.RefreshToken, after.Token)
	assert.Equal(t, f.clock.now, after.CreatedAt)

	_, err = f.tokens.FindByToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestReloginAppliesCurrentRefreshTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "c1", account.RoleCustomer, "alice", "secret1")

	_, err := f.svc.Grant(ctx, passwordGrant("customer", "alice", "secret1"))
	require.NoError(t, err)

	shorter := NewService(f.accounts, f.tokens, f.db, plainHasher{}, f.signer, &seqRefresh{}, &seqIDs{prefix: "tok-"}, f.clock.Now,
		Config{RefreshTTL: time.Hour}, nil)
	f.clock.Advance(time.Minute)
	pair, err := shorter.Grant(ctx, passwordGrant("customer", "alice", "secret1"))
	require.NoError(t, err)

	stored, err := f.tokens.FindByUser(ctx, account.RoleCustomer, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3600, stored.ExpiresIn)

	f.clock.Advance(time.Hour + time.Second)
	_, err = shorter.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestBadLoginUsesOneMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "c1", account.RoleCustomer, "alice", "secret1")

	_, unknown := f.svc.Grant(ctx, passwordGrant("customer", "bob", "secret1"))
	_, wrong := f.svc.Grant(ctx, passwordGrant("customer", "alice", "nope"))
	_, otherRole := f.svc.Grant(ctx, passwordGrant("partner", "alice", "secret1"))

	for _, err := range []error{unknown, wrong, otherRole} {
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
		assert.Equal(t, "Incorrect username or password", err.Error())
	}
}

func TestGrantValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Grant(ctx, passwordGrant("", "alice", "x"))
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	assert.EqualError(t, err, "User type is required")

	_, err = f.svc.Grant(ctx, passwordGrant("customer", "", ""))
	assert.EqualError(t, err, "Username and password are required")

	_, err = f.svc.Grant(ctx, GrantCommand{GrantType: GrantRefreshToken})
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	assert.EqualError(t, err, "Refresh token is required")

	_, err = f.svc.Grant(ctx, GrantCommand{GrantType: "client_credentials"})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRefreshKeepsTokenAndReflectsCurrentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partner := f.seed(t, "p1", account.RolePartner, "luigi", "secret1")

	pair, err := f.svc.Grant(ctx, passwordGrant("partner", "luigi", "secret1"))
	require.NoError(t, err)
	claims, err := f.svc.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.StatusPending, claims.Status)

	partner.SetStatus(account.StatusAccepted, f.clock.now)
	require.NoError(t, f.accounts.Update(ctx, partner))

	f.clock.Advance(time.Minute)
	refreshed, err := f.svc.Grant(ctx, GrantCommand{GrantType: GrantRefreshToken, RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

	claims, err = f.svc.Validate(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, token.Claims{UserID: "p1", Role: account.RolePartner, Status: account.StatusAccepted}, claims)
}

func TestRefreshFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "c1", account.RoleCustomer, "alice", "secret1")

	_, err := f.svc.Refresh(ctx, "unknown")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)

	pair, err := f.svc.Grant(ctx, passwordGrant("customer", "alice", "secret1"))
	require.NoError(t, err)

	f.clock.Advance(DefaultRefreshTTL + time.Second)
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestRefreshForDeletedOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "c1", account.RoleCustomer, "alice", "secret1")

	pair, err := f.svc.Grant(ctx, passwordGrant("customer", "alice", "secret1"))
	require.NoError(t, err)
	require.NoError(t, f.accounts.Delete(ctx, account.RoleCustomer, "c1"))

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "c1", account.RoleCustomer, "alice", "secret1")
	f.seed(t, "c2", account.RoleCustomer, "bob", "secret2")

	pair, err := f.svc.Grant(ctx, passwordGrant("customer", "alice", "secret1"))
	require.NoError(t, err)

	err = f.svc.Revoke(ctx, token.Claims{UserID: "c2", Role: account.RoleCustomer}, pair.RefreshToken)
	assert.ErrorIs(t, err, errs.ErrInvalidToken)

	require.NoError(t, f.svc.Revoke(ctx, token.Claims{UserID: "c1", Role: account.RoleCustomer}, pair.RefreshToken))
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "c1", account.RoleCustomer, "alice", "secret1")

	err := f.svc.ChangePassword(ctx, ChangePasswordCommand{UserID: "c1", Role: account.RoleCustomer, NewPassword: "abc"})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.EqualError(t, err, "New password must be at least 6 characters long, Old password is required")

	err = f.svc.ChangePassword(ctx, ChangePasswordCommand{UserID: "c1", Role: account.RoleCustomer, OldPassword: "wrong1", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrBadOldPassword)

	require.NoError(t, f.svc.ChangePassword(ctx, ChangePasswordCommand{UserID: "c1", Role: account.RoleCustomer, OldPassword: "secret1", NewPassword: "secret2"}))
	_, err = f.svc.Authenticate(ctx, "alice", "secret2", account.RoleCustomer)
	assert.NoError(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Validate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidAccess)
	_, err = f.svc.Validate(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
}
