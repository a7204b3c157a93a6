package account

import (
	"context"
	"strings"
	"testing"

	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	tokens    *memory.TokenRepository
	blobs     *fakeBlobs
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	f := &fixture{
		tokens:    memory.NewTokenRepository(db),
		blobs:     newFakeBlobs(),
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(memory.NewAccountRepository(db), f.tokens, db, plainHasher{}, f.blobs, f.publisher, &seqIDs{}, fixedClock, nil)
	return f
}

func register(role domain.Role, username, email string) RegisterCommand {
	return RegisterCommand{
		Role:     role,
		Password: "secret1",
		Profile:  domain.Profile{Username: username, Email: email, FirstName: "F", LastName: "L"},
	}
}

func TestRegisterHashesAndSetsPartnerPending(t *testing.T) {
	f := newFixture(t)

	acc, err := f.svc.Register(context.Background(), register(domain.RolePartner, "luigi", "luigi@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "hashed:secret1", acc.PasswordHash)
	assert.Equal(t, domain.StatusPending, acc.Status())
	assert.Equal(t, t0, acc.CreatedAt)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterCommand{Role: domain.RoleCustomer, Password: "abc"})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.EqualError(t, err, "Email is required, Username is required, Password must be at least 6 characters long")

	_, err = f.svc.Register(context.Background(), register("chef", "a", "a@example.com"))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUniquenessIsScopedToRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, register(domain.RolePartner, "p1", "shared@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, register(domain.RolePartner, "p2", "shared@example.com"))
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.EqualError(t, err, "Partner with this email already exists")

	_, err = f.svc.Register(ctx, register(domain.RolePartner, "P1", "other@example.com"))
	assert.EqualError(t, err, "Partner with this username already exists")

	_, err = f.svc.Register(ctx, register(domain.RoleCustomer, "p1", "shared@example.com"))
	assert.NoError(t, err)
}

func TestUpdateExcludesOwnValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.svc.Register(ctx, register(domain.RoleCustomer, "alice", "alice@example.com"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, register(domain.RoleCustomer, "bob", "bob@example.com"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, UpdateCommand{Role: domain.RoleCustomer, ID: alice.ID,
		Profile: domain.Profile{Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "A"}})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)

	_, err = f.svc.Update(ctx, UpdateCommand{Role: domain.RoleCustomer, ID: alice.ID,
		Profile: domain.Profile{Username: "bob", Email: "alice@example.com", FirstName: "A", LastName: "A"}})
	assert.EqualError(t, err, "Customer with this username already exists")

	_, err = f.svc.Update(ctx, UpdateCommand{Role: domain.RoleCustomer, ID: alice.ID, Profile: domain.Profile{Username: "alice"}})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.Update(ctx, UpdateCommand{Role: domain.RoleCustomer, ID: "missing",
		Profile: domain.Profile{Username: "x", Email: "x@example.com", FirstName: "x", LastName: "x"}})
	assert.EqualError(t, err, "Customer with this id doesn't exist")
}

func TestDeleteRemovesRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc, err := f.svc.Register(ctx, register(domain.RoleCustomer, "alice", "alice@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.tokens.Insert(ctx, &token.RefreshToken{ID: "t1", Token: "r", UserID: acc.ID, Role: domain.RoleCustomer, ExpiresIn: 60, CreatedAt: t0}))

	require.NoError(t, f.svc.Delete(ctx, domain.RoleCustomer, acc.ID))

	_, err = f.svc.Get(ctx, domain.RoleCustomer, acc.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = f.tokens.FindByToken(ctx, "r")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)

	assert.ErrorIs(t, f.svc.Delete(ctx, domain.RoleCustomer, acc.ID), errs.ErrNotFound)
}

func TestVerifyPartnerPublishesTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Register(ctx, register(domain.RolePartner, "luigi", "luigi@example.com"))
	require.NoError(t, err)

	got, err := f.svc.VerifyPartner(ctx, p.ID, "Accepted")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status())

	// any transition is allowed, including back to pending
	_, err = f.svc.VerifyPartner(ctx, p.ID, "pending")
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 2)
	first := f.publisher.events[0].(domain.PartnerStatusChangedEvent)
	assert.Equal(t, domain.StatusPending, first.From)
	assert.Equal(t, domain.StatusAccepted, first.To)

	_, err = f.svc.VerifyPartner(ctx, p.ID, "approved")
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.svc.VerifyPartner(ctx, "missing", "accepted")
	assert.EqualError(t, err, "Partner with this id doesn't exist")
}

func TestListPartnersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.Register(ctx, register(domain.RolePartner, "a", "a@example.com"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, register(domain.RolePartner, "b", "b@example.com"))
	require.NoError(t, err)
	_, err = f.svc.VerifyPartner(ctx, a.ID, "accepted")
	require.NoError(t, err)

	accepted, err := f.svc.ListPartners(ctx, "accepted")
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, a.ID, accepted[0].ID)

	all, err := f.svc.ListPartners(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.ListPartners(ctx, "bogus")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestProfileImageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc, err := f.svc.Register(ctx, register(domain.RoleCustomer, "alice", "alice@example.com"))
	require.NoError(t, err)
	caller := token.Claims{UserID: acc.ID, Role: domain.RoleCustomer}

	first, err := f.svc.UploadImage(ctx, caller, strings.NewReader("one"), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "blob-1", first.ImagePublicID)

	second, err := f.svc.UploadImage(ctx, caller, strings.NewReader("two"), "b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "blob-2", second.ImagePublicID)
	assert.Equal(t, []string{"blob-1"}, f.blobs.deleted)

	require.NoError(t, f.svc.RemoveImage(ctx, caller))
	profile, err := f.svc.GetProfile(ctx, caller)
	require.NoError(t, err)
	assert.Empty(t, profile.Image)
	assert.Empty(t, profile.ImagePublicID)
	assert.Equal(t, []string{"blob-1", "blob-2"}, f.blobs.deleted)
}

func TestUploadFailureKeepsImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc, err := f.svc.Register(ctx, register(domain.RoleCustomer, "alice", "alice@example.com"))
	require.NoError(t, err)
	caller := token.Claims{UserID: acc.ID, Role: domain.RoleCustomer}
	_, err = f.svc.UploadImage(ctx, caller, strings.NewReader("one"), "a.jpg")
	require.NoError(t, err)

	f.blobs.uploadErr = assert.AnError
	_, err = f.svc.UploadImage(ctx, caller, strings.NewReader("two"), "b.jpg")
	assert.ErrorIs(t, err, assert.AnError)

	profile, err := f.svc.GetProfile(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "blob-1", profile.ImagePublicID)
}
