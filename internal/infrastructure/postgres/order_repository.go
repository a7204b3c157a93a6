package postgres

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/order"

	"gorm.io/gorm"
)

type OrderRepository struct{ db *DB }

func NewOrderRepository(db *DB) *OrderRepository { return &OrderRepository{db: db} }

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	row := toOrderRow(o)
	row.Version = 1
	if err := r.db.conn(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return errs.Conflict("order: already exists")
		}
		return fmt.Errorf("order repository: insert: %w", err)
	}
	o.Version = 1
	return nil
}

// Update persists the cancellation flag only; items and prices are immutable.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	conn := r.db.conn(ctx)
	res := conn.Model(&orderRow{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"is_canceled": o.IsCanceled,
			"updated_at":  o.UpdatedAt,
			"version":     gorm.Expr("version + 1"),
		})
	err := versioned(res, func() (bool, error) {
		var n int64
		err := conn.Model(&orderRow{}).Where("id = ?", o.ID).Count(&n).Error
		return n > 0, err
	}, domain.ErrNotFound)
	if err != nil {
		if errs.IsKind(err) {
			return err
		}
		return fmt.Errorf("order repository: update: %w", err)
	}
	o.Version++
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var row orderRow
	err := r.withItems(ctx).Where("id = ?", id).Take(&row).Error
	if isNotFound(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order repository: find: %w", err)
	}
	return row.toDomain(), nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	return r.list(r.withItems(ctx).Where("customer_id = ?", customerID))
}

func (r *OrderRepository) ListByPartner(ctx context.Context, partnerID string) ([]*domain.Order, error) {
	if partnerID == "" {
		return nil, nil
	}
	return r.list(r.withItems(ctx).Where("partner_id = ?", partnerID))
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return r.list(r.withItems(ctx))
}

func (r *OrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.conn(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func (r *OrderRepository) list(q *gorm.DB) ([]*domain.Order, error) {
	var rows []orderRow
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("order repository: list: %w", err)
	}
	out := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
