package postgres

import (
	"context"
	"fmt"

	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/account"

	"gorm.io/gorm"
)

type AccountRepository struct{ db *DB }

func NewAccountRepository(db *DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) table(ctx context.Context, role domain.Role) *gorm.DB {
	q := r.db.conn(ctx).Table(accountTable(role))
	if role != domain.RolePartner {
		q = q.Omit("status")
	}
	return q
}

func (r *AccountRepository) Insert(ctx context.Context, a *domain.Account) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("account repository: id is required")
	}
	row := toAccountRow(a)
	if err := r.table(ctx, a.Role).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("account repository: insert: %w", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, a *domain.Account) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("account repository: id is required")
	}
	fields := map[string]any{
		"username":        a.Username,
		"password_hash":   a.PasswordHash,
		"email":           a.Email,
		"first_name":      a.FirstName,
		"last_name":       a.LastName,
		"image":           a.Image,
		"image_public_id": a.ImagePublicID,
		"updated_at":      a.UpdatedAt,
	}
	if a.Role == domain.RolePartner {
		fields["status"] = string(a.Status())
	}
	res := r.db.conn(ctx).Table(accountTable(a.Role)).Where("id = ?", a.ID).Updates(fields)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("account repository: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, role domain.Role, id string) error {
	res := r.db.conn(ctx).Table(accountTable(role)).Where("id = ?", id).Delete(&accountRow{})
	if res.Error != nil {
		return fmt.Errorf("account repository: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, role domain.Role, id string) (*domain.Account, error) {
	return r.findOne(ctx, role, "id = ?", id)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, role domain.Role, username string) (*domain.Account, error) {
	return r.findOne(ctx, role, "lower(username) = lower(?)", username)
}

func (r *AccountRepository) findOne(ctx context.Context, role domain.Role, where string, arg any) (*domain.Account, error) {
	var row accountRow
	err := r.db.conn(ctx).Table(accountTable(role)).Where(where, arg).Take(&row).Error
	if isNotFound(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account repository: find: %w", err)
	}
	return row.toDomain(role), nil
}

func (r *AccountRepository) ExistsByUsername(ctx context.Context, role domain.Role, username string) (bool, error) {
	return r.exists(ctx, role, "lower(username) = lower(?)", username)
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, role domain.Role, email string) (bool, error) {
	return r.exists(ctx, role, "lower(email) = lower(?)", email)
}

func (r *AccountRepository) exists(ctx context.Context, role domain.Role, where string, arg any) (bool, error) {
	var n int64
	if err := r.db.conn(ctx).Table(accountTable(role)).Where(where, arg).Count(&n).Error; err != nil {
		return false, fmt.Errorf("account repository: count: %w", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) List(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	return r.list(r.db.conn(ctx).Table(accountTable(role)), role)
}

func (r *AccountRepository) ListPartners(ctx context.Context, status domain.PartnerStatus) ([]*domain.Account, error) {
	q := r.db.conn(ctx).Table(accountTable(domain.RolePartner))
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	return r.list(q, domain.RolePartner)
}

func (r *AccountRepository) list(q *gorm.DB, role domain.Role) ([]*domain.Account, error) {
	var rows []accountRow
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("account repository: list: %w", err)
	}
	out := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(role))
	}
	return out, nil
}
