package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/persistence"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	authService = "auth-service"

	useCaseGrant          = "auth.grant"
	useCaseRefresh        = "auth.refresh"
	useCaseRevoke         = "auth.revoke"
	useCaseChangePassword = "auth.change_password"

	GrantPassword     = "password"
	GrantRefreshToken = "refresh_token"

	DefaultAccessTTL  = 1800 * time.Second
	DefaultRefreshTTL = 2592000 * time.Second

	minPasswordLength = 6
)

var (
	// ErrBadLogin is shared by unknown-user and wrong-password failures.
	ErrBadLogin        = errs.InvalidCredentials("Incorrect username or password")
	ErrWrongOwner      = errs.InvalidToken("Provided refresh token doesn't belong to this user")
	ErrBadOldPassword  = errs.InvalidCredentials("Old password is incorrect")
	ErrInvalidAccess   = errs.InvalidToken("Access token is not valid")
	ErrUnsupportedType = errs.Validation("Unsupported grant type")
	ErrRepository      = errors.New("auth: repository failure")
)

type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service authenticates accounts and manages their token pairs.
type Service struct {
	accounts   account.Repository
	tokens     token.Repository
	tx         persistence.Transactor
	hasher     application.PasswordHasher
	signer     Signer
	refresh    RefreshGenerator
	ids        application.IDGenerator
	now        application.Clock
	cfg        Config
	instrument *application.Instrument
}

func NewService(
	accounts account.Repository,
	tokens token.Repository,
	tx persistence.Transactor,
	hasher application.PasswordHasher,
	signer Signer,
	refresh RefreshGenerator,
	ids application.IDGenerator,
	clock application.Clock,
	cfg Config,
	tel observability.Observability,
) *Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if clock == nil {
		clock = application.UTCClock
	}
	return &Service{
		accounts:   accounts,
		tokens:     tokens,
		tx:         tx,
		hasher:     hasher,
		signer:     signer,
		refresh:    refresh,
		ids:        ids,
		now:        clock,
		cfg:        cfg,
		instrument: application.NewInstrument(authService, tel),
	}
}

type GrantCommand struct {
	GrantType    string
	UserType     string
	Username     string
	Password     string
	RefreshToken string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	IssuedAt     int64
}

// Grant dispatches on the grant type: password logins issue a fresh pair,
// refresh grants return a new access token next to the unchanged refresh token.
func (s *Service) Grant(ctx context.Context, cmd GrantCommand) (*TokenPair, error) {
	switch cmd.GrantType {
	case GrantPassword:
		return s.login(ctx, cmd)
	case GrantRefreshToken:
		return s.Refresh(ctx, cmd.RefreshToken)
	default:
		return nil, ErrUnsupportedType
	}
}

func (s *Service) login(ctx context.Context, cmd GrantCommand) (pair *TokenPair, err error) {
	err = s.instrument.Do(ctx, useCaseGrant, "GrantPassword", func(ctx context.Context, run *application.Run) error {
		if strings.TrimSpace(cmd.UserType) == "" {
			run.Status("USER_TYPE_REQUIRED")
			return errs.InvalidCredentials("User type is required")
		}
		role, perr := account.ParseRole(cmd.UserType)
		if perr != nil {
			run.Status("USER_TYPE_INVALID")
			return errs.InvalidCredentials("User type is required")
		}
		if cmd.Username == "" || cmd.Password == "" {
			run.Status("CREDENTIALS_REQUIRED")
			return errs.InvalidCredentials("Username and password are required")
		}

		acc, aerr := s.Authenticate(ctx, cmd.Username, cmd.Password, role)
		if aerr != nil {
			return aerr
		}
		run.Field("user_id", acc.ID)
		run.Span.SetAttributes(attribute.String("auth.role", string(role)))

		issued, ierr := s.IssueTokenPair(ctx, acc)
		if ierr != nil {
			return ierr
		}
		pair = issued
		return nil
	})
	return pair, err
}

// Authenticate resolves (username, role) and verifies the password.
func (s *Service) Authenticate(ctx context.Context, username, password string, role account.Role) (*account.Account, error) {
	acc, err := s.accounts.FindByUsername(ctx, role, username)
	if errors.Is(err, account.ErrNotFound) {
		return nil, ErrBadLogin
	}
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	if !s.hasher.Verify(password, acc.PasswordHash) {
		return nil, ErrBadLogin
	}
	return acc, nil
}

// IssueTokenPair signs an access token for acc and stores a new refresh
// token, overwriting the user's previous one.
func (s *Service) IssueTokenPair(ctx context.Context, acc *account.Account) (*TokenPair, error) {
	now := s.now()
	access, err := s.signer.Sign(token.ClaimsFor(acc), s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: sign access token: %w", err)
	}
	material, err := s.refresh.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("auth: generate refresh token: %w", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, ferr := s.tokens.FindByUser(ctx, acc.Role, acc.ID)
		switch {
		case ferr == nil:
			existing.Reissue(material, s.cfg.RefreshTTL, now)
			return s.tokens.Update(ctx, existing)
		case errors.Is(ferr, token.ErrNotFound):
			return s.tokens.Insert(ctx, &token.RefreshToken{
				ID:        s.ids.NewID(),
				Token:     material,
				UserID:    acc.ID,
				Role:      acc.Role,
				ExpiresIn: int(s.cfg.RefreshTTL / time.Second),
				CreatedAt: now,
			})
		default:
			return ferr
		}
	})
	if err != nil {
		return nil, wrapRepositoryError(err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: material,
		ExpiresIn:    int(s.cfg.AccessTTL / time.Second),
		IssuedAt:     now.Unix(),
	}, nil
}

// Refresh issues a new access token for the owner of refreshToken. The refresh
// token itself is returned unchanged.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	err = s.instrument.Do(ctx, useCaseRefresh, "RefreshToken", func(ctx context.Context, run *application.Run) error {
		if refreshToken == "" {
			run.Status("REFRESH_TOKEN_REQUIRED")
			return errs.InvalidCredentials("Refresh token is required")
		}
		stored, ferr := s.tokens.FindByToken(ctx, refreshToken)
		if ferr != nil {
			return wrapRepositoryError(ferr)
		}
		now := s.now()
		if stored.Expired(now) {
			run.Status("REFRESH_TOKEN_EXPIRED")
			return token.ErrExpired
		}

		acc, aerr := s.accounts.FindByID(ctx, stored.Role, stored.UserID)
		if errors.Is(aerr, account.ErrNotFound) {
			return errs.NotFound("User with this id doesn't exist")
		}
		if aerr != nil {
			return wrapRepositoryError(aerr)
		}
		run.Field("user_id", acc.ID)

		access, serr := s.signer.Sign(token.ClaimsFor(acc), s.cfg.AccessTTL)
		if serr != nil {
			return fmt.Errorf("auth: sign access token: %w", serr)
		}
		pair = &TokenPair{
			AccessToken:  access,
			RefreshToken: stored.Token,
			ExpiresIn:    int(s.cfg.AccessTTL / time.Second),
			IssuedAt:     now.Unix(),
		}
		return nil
	})
	return pair, err
}

// Revoke deletes refreshToken if it belongs to the caller.
func (s *Service) Revoke(ctx context.Context, caller token.Claims, refreshToken string) error {
	return s.instrument.Do(ctx, useCaseRevoke, "RevokeToken", func(ctx context.Context, run *application.Run) error {
		if refreshToken == "" {
			run.Status("REFRESH_TOKEN_REQUIRED")
			return errs.InvalidToken("Refresh token is required")
		}
		stored, err := s.tokens.FindByToken(ctx, refreshToken)
		if err != nil {
			return wrapRepositoryError(err)
		}
		if stored.UserID != caller.UserID || stored.Role != caller.Role {
			return ErrWrongOwner
		}
		return wrapRepositoryError(s.tokens.Delete(ctx, stored.ID))
	})
}

type ChangePasswordCommand struct {
	UserID      string
	Role        account.Role
	OldPassword string
	NewPassword string
}

func (s *Service) ChangePassword(ctx context.Context, cmd ChangePasswordCommand) error {
	return s.instrument.Do(ctx, useCaseChangePassword, "ChangePassword", func(ctx context.Context, run *application.Run) error {
		var problems []string
		if cmd.NewPassword == "" {
			problems = append(problems, "New password is required")
		} else if len(cmd.NewPassword) < minPasswordLength {
			problems = append(problems, fmt.Sprintf("New password must be at least %d characters long", minPasswordLength))
		}
		if cmd.OldPassword == "" {
			problems = append(problems, "Old password is required")
		}
		if len(problems) > 0 {
			return errs.Validation("%s", strings.Join(problems, ", "))
		}

		acc, err := s.accounts.FindByID(ctx, cmd.Role, cmd.UserID)
		if err != nil {
			return wrapRepositoryError(err)
		}
		if !s.hasher.Verify(cmd.OldPassword, acc.PasswordHash) {
			return ErrBadOldPassword
		}
		hash, err := s.hasher.Hash(cmd.NewPassword)
		if err != nil {
			return fmt.Errorf("auth: hash password: %w", err)
		}
		acc.PasswordHash = hash
		acc.UpdatedAt = s.now()
		return wrapRepositoryError(s.accounts.Update(ctx, acc))
	})
}

// Validate parses an access token into its claims.
func (s *Service) Validate(_ context.Context, accessToken string) (token.Claims, error) {
	if accessToken == "" {
		return token.Claims{}, ErrInvalidAccess
	}
	claims, err := s.signer.Parse(accessToken)
	if err != nil {
		return token.Claims{}, ErrInvalidAccess
	}
	return claims, nil
}

// wrapRepositoryError keeps domain kinds intact and tags the rest.
func wrapRepositoryError(err error) error {
	if err == nil || errs.IsKind(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}
