package postgres

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
	row := toTokenRow(t)
	if err := r.db.conn(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return errs.Conflict("refresh token: user already has one")
		}
		return fmt.Errorf("token repository: insert: %w", err)
	}
	return nil
}

func (r *TokenRepository) Update(ctx context.Context, t *domain.RefreshToken) error {
	res := r.db.conn(ctx).Model(&tokenRow{}).Where("id = ?", t.ID).Updates(map[string]any{
		"token":      t.Token,
		"expires_in": t.ExpiresIn,
		"created_at": t.CreatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("token repository: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	res := r.db.conn(ctx).Where("id = ?", id).Delete(&tokenRow{})
	if res.Error != nil {
		return fmt.Errorf("token repository: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TokenRepository) FindByToken(ctx context.Context, raw string) (*domain.RefreshToken, error) {
	return r.find(ctx, "token = ?", raw)
}

func (r *TokenRepository) FindByUser(ctx context.Context, role account.Role, userID string) (*domain.RefreshToken, error) {
	return r.find(ctx, "user_id = ? AND user_type = ?", userID, string(role))
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, role account.Role, userID string) error {
	err := r.db.conn(ctx).Where("user_id = ? AND user_type = ?", userID, string(role)).Delete(&tokenRow{}).Error
	if err != nil {
		return fmt.Errorf("token repository: delete by user: %w", err)
	}
	return nil
}

func (r *TokenRepository) find(ctx context.Context, where string, args ...any) (*domain.RefreshToken, error) {
	var row tokenRow
	err := r.db.conn(ctx).Where(where, args...).Take(&row).Error
	if isNotFound(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("token repository: find: %w", err)
	}
	return row.toDomain(), nil
}
