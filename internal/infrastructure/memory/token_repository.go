package memory

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
)

type TokenRepository struct{ db *DB }

func NewTokenRepository(db *DB) *TokenRepository { return &TokenRepository{db: db} }

func (r *TokenRepository) Insert(ctx context.Context, t *domain.RefreshToken) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("token repository: id is required")
	}
	return r.db.write(ctx, func() error {
		for _, other := range r.db.tokens {
			if other.UserID == t.UserID && other.Role == t.Role {
				return errs.Conflict("refresh token: user already has one")
			}
		}
		c := *t
		r.db.tokens[t.ID] = &c
		return nil
	})
}

func (r *TokenRepository) Update(ctx context.Context, t *domain.RefreshToken) error {
	return r.db.write(ctx, func() error {
		if _, ok := r.db.tokens[t.ID]; !ok {
			return domain.ErrNotFound
		}
		c := *t
		r.db.tokens[t.ID] = &c
		return nil
	})
}

func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func() error {
		if _, ok := r.db.tokens[id]; !ok {
			return domain.ErrNotFound
		}
		delete(r.db.tokens, id)
		return nil
	})
}

func (r *TokenRepository) FindByToken(_ context.Context, raw string) (*domain.RefreshToken, error) {
	return r.find(func(t *domain.RefreshToken) bool { return t.Token == raw })
}

func (r *TokenRepository) FindByUser(_ context.Context, role account.Role, userID string) (*domain.RefreshToken, error) {
	return r.find(func(t *domain.RefreshToken) bool { return t.UserID == userID && t.Role == role })
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, role account.Role, userID string) error {
	return r.db.write(ctx, func() error {
		for id, t := range r.db.tokens {
			if t.UserID == userID && t.Role == role {
				delete(r.db.tokens, id)
			}
		}
		return nil
	})
}

func (r *TokenRepository) find(match func(*domain.RefreshToken) bool) (out *domain.RefreshToken, err error) {
	r.db.read(func() {
		for _, t := range r.db.tokens {
			if match(t) {
				c := *t
				out = &c
				return
			}
		}
		err = domain.ErrNotFound
	})
	return out, err
}
