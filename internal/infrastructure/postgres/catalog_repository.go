package postgres

import (
	"context"
	"fmt"

	domain "github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"

	"gorm.io/gorm"
)

type StoreRepository struct{ db *DB }

func NewStoreRepository(db *DB) *StoreRepository { return &StoreRepository{db: db} }

func (r *StoreRepository) Insert(ctx context.Context, s *domain.Store) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("store repository: id is required")
	}
	row := toStoreRow(s)
	if err := r.db.conn(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return errs.Conflict("store: already exists")
		}
		return fmt.Errorf("store repository: insert: %w", err)
	}
	return nil
}

func (r *StoreRepository) Update(ctx context.Context, s *domain.Store) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("store repository: id is required")
	}
	row := toStoreRow(s)
	res := r.db.conn(ctx).Model(&storeRow{ID: s.ID}).Select("*").Omit("id", "partner_id", "created_at").Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("store repository: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	res := r.db.conn(ctx).Where("id = ?", id).Delete(&storeRow{})
	if res.Error != nil {
		return fmt.Errorf("store repository: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	var row storeRow
	err := r.db.conn(ctx).Where("id = ?", id).Take(&row).Error
	if isNotFound(err) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store repository: find: %w", err)
	}
	return row.toDomain(), nil
}

func (r *StoreRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Store, error) {
	out := make(map[string]*domain.Store, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []storeRow
	if err := r.db.conn(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store repository: find many: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row.toDomain()
	}
	return out, nil
}

func (r *StoreRepository) List(ctx context.Context, f domain.StoreFilter) ([]*domain.Store, error) {
	q := r.db.conn(ctx).Model(&storeRow{})
	if f.PartnerID != "" {
		q = q.Where("partner_id = ?", f.PartnerID)
	}
	if f.Category != "" {
		q = q.Where("lower(category) = lower(?)", f.Category)
	}
	if f.City != "" {
		q = q.Where("lower(city) = lower(?)", f.City)
	}
	var rows []storeRow
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store repository: list: %w", err)
	}
	out := make([]*domain.Store, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type ProductRepository struct{ db *DB }

func NewProductRepository(db *DB) *ProductRepository { return &ProductRepository{db: db} }

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}
	row := toProductRow(p)
	row.Version = 1
	if err := r.db.conn(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return errs.Conflict("product: already exists")
		}
		return fmt.Errorf("product repository: insert: %w", err)
	}
	p.Version = 1
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}
	conn := r.db.conn(ctx)
	res := conn.Model(&productRow{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"name":            p.Name,
			"description":     p.Description,
			"price":           p.Price,
			"quantity":        p.Quantity,
			"image":           p.Image,
			"image_public_id": p.ImagePublicID,
			"is_deleted":      p.IsDeleted,
			"updated_at":      p.UpdatedAt,
			"version":         gorm.Expr("version + 1"),
		})
	err := versioned(res, func() (bool, error) {
		var n int64
		err := conn.Model(&productRow{}).Where("id = ?", p.ID).Count(&n).Error
		return n > 0, err
	}, domain.ErrProductNotFound)
	if err != nil {
		if errs.IsKind(err) {
			return err
		}
		return fmt.Errorf("product repository: update: %w", err)
	}
	p.Version++
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var row productRow
	err := r.db.conn(ctx).Where("id = ?", id).Take(&row).Error
	if isNotFound(err) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("product repository: find: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, storeID string) ([]*domain.Product, error) {
	q := r.db.conn(ctx).Where("is_deleted = ?", false)
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}
	var rows []productRow
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("product repository: list: %w", err)
	}
	out := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
