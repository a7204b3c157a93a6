package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Zhima-Mochi/fooddelivery/internal/application"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/blob"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domoutbox "github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/persistence"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	accountService = "account-service"

	useCaseRegister      = "account.register"
	useCaseUpdate        = "account.update"
	useCaseDelete        = "account.delete"
	useCaseVerifyPartner = "account.verify_partner"
	useCaseUploadImage   = "account.upload_image"
	useCaseRemoveImage   = "account.remove_image"

	blobPeer          = "blob"
	minPasswordLength = 6
)

var ErrRepository = errors.New("account: repository failure")

type Service struct {
	accounts   domain.Repository
	tokens     token.Repository
	tx         persistence.Transactor
	hasher     application.PasswordHasher
	blobs      blob.Store
	publisher  domoutbox.Publisher
	ids        application.IDGenerator
	now        application.Clock
	instrument *application.Instrument
}

func NewService(
	accounts domain.Repository,
	tokens token.Repository,
	tx persistence.Transactor,
	hasher application.PasswordHasher,
	blobs blob.Store,
	publisher domoutbox.Publisher,
	ids application.IDGenerator,
	clock application.Clock,
	tel observability.Observability,
) *Service {
	if clock == nil {
		clock = application.UTCClock
	}
	return &Service{
		accounts:   accounts,
		tokens:     tokens,
		tx:         tx,
		hasher:     hasher,
		blobs:      blobs,
		publisher:  publisher,
		ids:        ids,
		now:        clock,
		instrument: application.NewInstrument(accountService, tel),
	}
}

type RegisterCommand struct {
	Role     domain.Role
	Password string
	domain.Profile
}

// Register creates an account. Username and email are unique within the
// role only; the same email may exist once per role.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (acc *domain.Account, err error) {
	err = s.instrument.Do(ctx, useCaseRegister, "RegisterAccount", func(ctx context.Context, run *application.Run) error {
		if _, rerr := domain.ParseRole(string(cmd.Role)); rerr != nil {
			run.Status("ROLE_INVALID")
			return rerr
		}
		var problems []string
		if strings.TrimSpace(cmd.Email) == "" {
			problems = append(problems, "Email is required")
		}
		if strings.TrimSpace(cmd.Username) == "" {
			problems = append(problems, "Username is required")
		}
		if len(cmd.Password) < minPasswordLength {
			problems = append(problems, fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
		}
		if len(problems) > 0 {
			run.Status("VALIDATION_FAILED")
			return errs.Validation("%s", strings.Join(problems, ", "))
		}

		hash, herr := s.hasher.Hash(cmd.Password)
		if herr != nil {
			return fmt.Errorf("account: hash password: %w", herr)
		}

		created := domain.New(s.ids.NewID(), cmd.Role, cmd.Profile, hash, s.now())
		terr := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.ensureUnique(ctx, cmd.Role, cmd.Profile, nil); err != nil {
				return err
			}
			return s.accounts.Insert(ctx, created)
		})
		if terr != nil {
			return wrapRepositoryError(terr)
		}
		run.Field("account_id", created.ID)
		acc = created
		return nil
	}, attribute.String("account.role", string(cmd.Role)))
	return acc, err
}

type UpdateCommand struct {
	Role domain.Role
	ID   string
	domain.Profile
}

// Update replaces the editable profile fields. Uniqueness is re-checked only
// for values that actually change.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (acc *domain.Account, err error) {
	err = s.instrument.Do(ctx, useCaseUpdate, "UpdateAccount", func(ctx context.Context, run *application.Run) error {
		if problems := profileProblems(cmd.Profile); len(problems) > 0 {
			run.Status("VALIDATION_FAILED")
			return errs.Validation("%s", strings.Join(problems, ", "))
		}
		terr := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			current, err := s.find(ctx, cmd.Role, cmd.ID)
			if err != nil {
				return err
			}
			if err := s.ensureUnique(ctx, cmd.Role, cmd.Profile, current); err != nil {
				return err
			}
			current.ApplyProfile(cmd.Profile, s.now())
			if err := s.accounts.Update(ctx, current); err != nil {
				return err
			}
			acc = current
			return nil
		})
		return wrapRepositoryError(terr)
	}, attribute.String("account.role", string(cmd.Role)))
	return acc, err
}

// Delete removes the account together with its refresh token.
func (s *Service) Delete(ctx context.Context, role domain.Role, id string) error {
	return s.instrument.Do(ctx, useCaseDelete, "DeleteAccount", func(ctx context.Context, run *application.Run) error {
		var removed *domain.Account
		terr := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			acc, err := s.find(ctx, role, id)
			if err != nil {
				return err
			}
			if err := s.accounts.Delete(ctx, role, id); err != nil {
				return err
			}
			removed = acc
			return s.tokens.DeleteByUser(ctx, role, id)
		})
		if terr != nil {
			return wrapRepositoryError(terr)
		}
		if removed.ImagePublicID != "" {
			s.dropBlob(ctx, run, removed.ImagePublicID)
		}
		return nil
	}, attribute.String("account.role", string(role)))
}

func (s *Service) Get(ctx context.Context, role domain.Role, id string) (*domain.Account, error) {
	acc, err := s.find(ctx, role, id)
	return acc, wrapRepositoryError(err)
}

func (s *Service) List(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	out, err := s.accounts.List(ctx, role)
	return out, wrapRepositoryError(err)
}

// ListPartners filters partners by status; an empty status lists all of them.
func (s *Service) ListPartners(ctx context.Context, status string) ([]*domain.Account, error) {
	var filter domain.PartnerStatus
	if status != "" {
		parsed, err := domain.ParsePartnerStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}
	out, err := s.accounts.ListPartners(ctx, filter)
	return out, wrapRepositoryError(err)
}

// VerifyPartner sets a partner's verification status. Any transition is allowed.
func (s *Service) VerifyPartner(ctx context.Context, id, status string) (acc *domain.Account, err error) {
	err = s.instrument.Do(ctx, useCaseVerifyPartner, "VerifyPartner", func(ctx context.Context, run *application.Run) error {
		next, perr := domain.ParsePartnerStatus(status)
		if perr != nil {
			run.Status("STATUS_INVALID")
			return perr
		}
		var event domain.PartnerStatusChangedEvent
		terr := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			partner, err := s.find(ctx, domain.RolePartner, id)
			if err != nil {
				return err
			}
			now := s.now()
			event = domain.PartnerStatusChangedEvent{PartnerID: id, From: partner.Status(), To: next, OccurredAt: now}
			partner.SetStatus(next, now)
			if err := s.accounts.Update(ctx, partner); err != nil {
				return err
			}
			acc = partner
			return nil
		})
		if terr != nil {
			return wrapRepositoryError(terr)
		}
		run.Field("partner_id", id)
		run.Field("partner_status", string(next))
		s.instrument.Publish(ctx, run, s.publisher, event)
		return nil
	})
	return acc, err
}

func (s *Service) GetProfile(ctx context.Context, caller token.Claims) (*domain.Account, error) {
	return s.Get(ctx, caller.Role, caller.UserID)
}

func (s *Service) UpdateProfile(ctx context.Context, caller token.Claims, p domain.Profile) (*domain.Account, error) {
	return s.Update(ctx, UpdateCommand{Role: caller.Role, ID: caller.UserID, Profile: p})
}

// UploadImage stores a new avatar for the caller and drops the previous one.
func (s *Service) UploadImage(ctx context.Context, caller token.Claims, r io.Reader, name string) (acc *domain.Account, err error) {
	err = s.instrument.Do(ctx, useCaseUploadImage, "UploadAccountImage", func(ctx context.Context, run *application.Run) error {
		current, ferr := s.find(ctx, caller.Role, caller.UserID)
		if ferr != nil {
			return wrapRepositoryError(ferr)
		}
		var obj *blob.Object
		uerr := s.instrument.External(blobPeer, "upload", func() error {
			var err error
			obj, err = s.blobs.Upload(ctx, r, name)
			return err
		})
		if uerr != nil {
			run.Status("BLOB_UPLOAD_FAILED")
			return fmt.Errorf("account: upload image: %w", uerr)
		}
		previous := current.ImagePublicID
		current.SetImage(obj.URL, obj.PublicID, s.now())
		if err := s.accounts.Update(ctx, current); err != nil {
			s.dropBlob(ctx, run, obj.PublicID)
			return wrapRepositoryError(err)
		}
		if previous != "" {
			s.dropBlob(ctx, run, previous)
		}
		acc = current
		return nil
	})
	return acc, err
}

func (s *Service) RemoveImage(ctx context.Context, caller token.Claims) error {
	return s.instrument.Do(ctx, useCaseRemoveImage, "RemoveAccountImage", func(ctx context.Context, run *application.Run) error {
		current, err := s.find(ctx, caller.Role, caller.UserID)
		if err != nil {
			return wrapRepositoryError(err)
		}
		if current.ImagePublicID == "" {
			run.Status("NO_IMAGE")
			return nil
		}
		previous := current.ImagePublicID
		current.SetImage("", "", s.now())
		if err := s.accounts.Update(ctx, current); err != nil {
			return wrapRepositoryError(err)
		}
		s.dropBlob(ctx, run, previous)
		return nil
	})
}

func (s *Service) find(ctx context.Context, role domain.Role, id string) (*domain.Account, error) {
	acc, err := s.accounts.FindByID(ctx, role, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errs.NotFound("%s with this id doesn't exist", role.Title())
	}
	return acc, err
}

// ensureUnique checks p against the role's table. current, when set, is the
// account being edited; its own values never conflict.
func (s *Service) ensureUnique(ctx context.Context, role domain.Role, p domain.Profile, current *domain.Account) error {
	if current == nil || !strings.EqualFold(current.Email, p.Email) {
		taken, err := s.accounts.ExistsByEmail(ctx, role, p.Email)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict("%s with this email already exists", role.Title())
		}
	}
	if current == nil || !strings.EqualFold(current.Username, p.Username) {
		taken, err := s.accounts.ExistsByUsername(ctx, role, p.Username)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict("%s with this username already exists", role.Title())
		}
	}
	return nil
}

func (s *Service) dropBlob(ctx context.Context, run *application.Run, publicID string) {
	err := s.instrument.External(blobPeer, "delete", func() error {
		return s.blobs.Delete(ctx, publicID)
	})
	if err != nil {
		run.Field("blob_delete_error", err.Error())
	}
}

func profileProblems(p domain.Profile) []string {
	var problems []string
	if strings.TrimSpace(p.Username) == "" {
		problems = append(problems, "Username is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		problems = append(problems, "Email is required")
	}
	if strings.TrimSpace(p.FirstName) == "" {
		problems = append(problems, "First name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		problems = append(problems, "Last name is required")
	}
	return problems
}

func wrapRepositoryError(err error) error {
	if err == nil || errs.IsKind(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}
