package memory

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
)

type AccountRepository struct{ db *DB }

func NewAccountRepository(db *DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) table(role domain.Role) (map[string]*domain.Account, error) {
	t, ok := r.db.accounts[role]
	if !ok {
		return nil, fmt.Errorf("account repository: unknown role %q", role)
	}
	return t, nil
}

func (r *AccountRepository) Insert(ctx context.Context, a *domain.Account) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("account repository: id is required")
	}
	return r.db.write(ctx, func() error {
		t, err := r.table(a.Role)
		if err != nil {
			return err
		}
		if _, exists := t[a.ID]; exists {
			return domain.ErrDuplicate
		}
		if duplicate(t, a) {
			return domain.ErrDuplicate
		}
		t[a.ID] = a.Clone()
		return nil
	})
}

func (r *AccountRepository) Update(ctx context.Context, a *domain.Account) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("account repository: id is required")
	}
	return r.db.write(ctx, func() error {
		t, err := r.table(a.Role)
		if err != nil {
			return err
		}
		if _, exists := t[a.ID]; !exists {
			return domain.ErrNotFound
		}
		if duplicate(t, a) {
			return domain.ErrDuplicate
		}
		t[a.ID] = a.Clone()
		return nil
	})
}

// duplicate reports another row in t sharing a's username or email.
func duplicate(t map[string]*domain.Account, a *domain.Account) bool {
	for id, other := range t {
		if id == a.ID {
			continue
		}
		if strings.EqualFold(other.Username, a.Username) || strings.EqualFold(other.Email, a.Email) {
			return true
		}
	}
	return false
}

func (r *AccountRepository) Delete(ctx context.Context, role domain.Role, id string) error {
	return r.db.write(ctx, func() error {
		t, err := r.table(role)
		if err != nil {
			return err
		}
		if _, exists := t[id]; !exists {
			return domain.ErrNotFound
		}
		delete(t, id)
		return nil
	})
}

func (r *AccountRepository) FindByID(_ context.Context, role domain.Role, id string) (out *domain.Account, err error) {
	r.db.read(func() {
		t, terr := r.table(role)
		if terr != nil {
			err = terr
			return
		}
		a, ok := t[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		out = a.Clone()
	})
	return out, err
}

func (r *AccountRepository) FindByUsername(_ context.Context, role domain.Role, username string) (out *domain.Account, err error) {
	r.db.read(func() {
		out, err = r.findBy(role, func(a *domain.Account) bool { return strings.EqualFold(a.Username, username) })
	})
	return out, err
}

func (r *AccountRepository) findBy(role domain.Role, match func(*domain.Account) bool) (*domain.Account, error) {
	t, err := r.table(role)
	if err != nil {
		return nil, err
	}
	for _, a := range t {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *AccountRepository) ExistsByUsername(_ context.Context, role domain.Role, username string) (bool, error) {
	var err error
	r.db.read(func() {
		_, err = r.findBy(role, func(a *domain.Account) bool { return strings.EqualFold(a.Username, username) })
	})
	return existsResult(err)
}

func (r *AccountRepository) ExistsByEmail(_ context.Context, role domain.Role, email string) (bool, error) {
	var err error
	r.db.read(func() {
		_, err = r.findBy(role, func(a *domain.Account) bool { return strings.EqualFold(a.Email, email) })
	})
	return existsResult(err)
}

func existsResult(err error) (bool, error) {
	switch err {
	case nil:
		return true, nil
	case domain.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (r *AccountRepository) List(_ context.Context, role domain.Role) (out []*domain.Account, err error) {
	r.db.read(func() {
		t, terr := r.table(role)
		if terr != nil {
			err = terr
			return
		}
		for _, a := range t {
			out = append(out, a.Clone())
		}
	})
	sortAccounts(out)
	return out, err
}

func (r *AccountRepository) ListPartners(_ context.Context, status domain.PartnerStatus) (out []*domain.Account, err error) {
	r.db.read(func() {
		for _, a := range r.db.accounts[domain.RolePartner] {
			if status != "" && a.Status() != status {
				continue
			}
			out = append(out, a.Clone())
		}
	})
	sortAccounts(out)
	return out, err
}

func sortAccounts(as []*domain.Account) {
	sortByCreated(as, func(a *domain.Account) (int64, string) { return a.CreatedAt.UnixNano(), a.ID })
}
