package postgres

import (
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/shopspring/decimal"
)

// accountRow maps admins, partners and customers. Status only exists on partners.
type accountRow struct {
	ID            string `gorm:"primaryKey"`
	Username      string
	PasswordHash  string
	Email         string
	FirstName     string
	LastName      string
	Image         string
	ImagePublicID string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func accountTable(r account.Role) string {
	switch r {
	case account.RoleAdmin:
		return "admins"
	case account.RolePartner:
		return "partners"
	default:
		return "customers"
	}
}

func toAccountRow(a *account.Account) accountRow {
	return accountRow{
		ID:            a.ID,
		Username:      a.Username,
		PasswordHash:  a.PasswordHash,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Image:         a.Image,
		ImagePublicID: a.ImagePublicID,
		Status:        string(a.Status()),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func (r accountRow) toDomain(role account.Role) *account.Account {
	a := &account.Account{
		ID:            r.ID,
		Role:          role,
		Username:      r.Username,
		PasswordHash:  r.PasswordHash,
		Email:         r.Email,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Image:         r.Image,
		ImagePublicID: r.ImagePublicID,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if role == account.RolePartner {
		a.Partner = &account.PartnerDetails{Status: account.PartnerStatus(r.Status)}
	}
	return a
}

type storeRow struct {
	ID                    string `gorm:"primaryKey"`
	PartnerID             string
	Name                  string
	Description           string
	Address               string
	City                  string
	PostalCode            string
	Phone                 string
	Category              string
	DeliveryTimeInMinutes int
	DeliveryFee           decimal.Decimal
	Image                 string
	ImagePublicID         string
	Coordinates           []catalog.Coordinate `gorm:"serializer:json"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (storeRow) TableName() string { return "stores" }

func toStoreRow(s *catalog.Store) storeRow {
	coords := s.Coordinates
	if coords == nil {
		coords = []catalog.Coordinate{}
	}
	return storeRow{
		ID:                    s.ID,
		PartnerID:             s.PartnerID,
		Name:                  s.Name,
		Description:           s.Description,
		Address:               s.Address,
		City:                  s.City,
		PostalCode:            s.PostalCode,
		Phone:                 s.Phone,
		Category:              s.Category,
		DeliveryTimeInMinutes: s.DeliveryTimeInMinutes,
		DeliveryFee:           s.DeliveryFee,
		Image:                 s.Image,
		ImagePublicID:         s.ImagePublicID,
		Coordinates:           coords,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (r storeRow) toDomain() *catalog.Store {
	return &catalog.Store{
		ID:                    r.ID,
		PartnerID:             r.PartnerID,
		Name:                  r.Name,
		Description:           r.Description,
		Address:               r.Address,
		City:                  r.City,
		PostalCode:            r.PostalCode,
		Phone:                 r.Phone,
		Category:              r.Category,
		DeliveryTimeInMinutes: r.DeliveryTimeInMinutes,
		DeliveryFee:           r.DeliveryFee,
		Image:                 r.Image,
		ImagePublicID:         r.ImagePublicID,
		Coordinates:           r.Coordinates,
		CreatedAt:             r.CreatedAt.UTC(),
		UpdatedAt:             r.UpdatedAt.UTC(),
	}
}

type productRow struct {
	ID            string `gorm:"primaryKey"`
	StoreID       string
	Name          string
	Description   string
	Price         decimal.Decimal
	Quantity      int
	Image         string
	ImagePublicID string
	IsDeleted     bool
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (productRow) TableName() string { return "products" }

func toProductRow(p *catalog.Product) productRow {
	return productRow{
		ID:            p.ID,
		StoreID:       p.StoreID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Quantity:      p.Quantity,
		Image:         p.Image,
		ImagePublicID: p.ImagePublicID,
		IsDeleted:     p.IsDeleted,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (r productRow) toDomain() *catalog.Product {
	return &catalog.Product{
		ID:            r.ID,
		StoreID:       r.StoreID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Quantity:      r.Quantity,
		Image:         r.Image,
		ImagePublicID: r.ImagePublicID,
		IsDeleted:     r.IsDeleted,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type orderRow struct {
	ID              string `gorm:"primaryKey"`
	CustomerID      string
	StoreID         string
	PartnerID       string
	ItemsPrice      decimal.Decimal
	DeliveryFee     decimal.Decimal
	TotalPrice      decimal.Decimal
	Address         string
	PaymentIntentID string
	IsCanceled      bool
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []orderItemRow `gorm:"foreignKey:OrderID"`
}

func (orderRow) TableName() string { return "orders" }

type orderItemRow struct {
	ID                 string `gorm:"primaryKey"`
	OrderID            string
	ProductID          string
	Position           int
	Quantity           int
	ProductName        string
	ProductDescription string
	ProductImage       string
	ProductPrice       decimal.Decimal
	TotalPrice         decimal.Decimal
}

func (orderItemRow) TableName() string { return "order_items" }

func toOrderRow(o *order.Order) orderRow {
	row := orderRow{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		StoreID:         o.StoreID,
		PartnerID:       o.PartnerID,
		ItemsPrice:      o.ItemsPrice,
		DeliveryFee:     o.DeliveryFee,
		TotalPrice:      o.TotalPrice,
		Address:         o.Address,
		PaymentIntentID: o.PaymentIntentID,
		IsCanceled:      o.IsCanceled,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           make([]orderItemRow, 0, len(o.Items)),
	}
	for i, it := range o.Items {
		row.Items = append(row.Items, orderItemRow{
			ID:                 it.ID,
			OrderID:            o.ID,
			ProductID:          it.ProductID,
			Position:           i,
			Quantity:           it.Quantity,
			ProductName:        it.ProductName,
			ProductDescription: it.ProductDescription,
			ProductImage:       it.ProductImage,
			ProductPrice:       it.ProductPrice,
			TotalPrice:         it.TotalPrice,
		})
	}
	return row
}

func (r orderRow) toDomain() *order.Order {
	o := &order.Order{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		StoreID:         r.StoreID,
		PartnerID:       r.PartnerID,
		ItemsPrice:      r.ItemsPrice,
		DeliveryFee:     r.DeliveryFee,
		TotalPrice:      r.TotalPrice,
		Address:         r.Address,
		PaymentIntentID: r.PaymentIntentID,
		IsCanceled:      r.IsCanceled,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
		Items:           make([]order.Item, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		o.Items = append(o.Items, order.Item{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			ProductName:        it.ProductName,
			ProductDescription: it.ProductDescription,
			ProductImage:       it.ProductImage,
			ProductPrice:       it.ProductPrice,
			TotalPrice:         it.TotalPrice,
		})
	}
	return o
}

type tokenRow struct {
	ID        string `gorm:"primaryKey"`
	Token     string
	UserID    string
	UserType  string
	ExpiresIn int
	CreatedAt time.Time
}

func (tokenRow) TableName() string { return "refresh_tokens" }

func toTokenRow(t *token.RefreshToken) tokenRow {
	return tokenRow{
		ID:        t.ID,
		Token:     t.Token,
		UserID:    t.UserID,
		UserType:  string(t.Role),
		ExpiresIn: t.ExpiresIn,
		CreatedAt: t.CreatedAt,
	}
}

func (r tokenRow) toDomain() *token.RefreshToken {
	return &token.RefreshToken{
		ID:        r.ID,
		Token:     r.Token,
		UserID:    r.UserID,
		Role:      account.Role(r.UserType),
		ExpiresIn: r.ExpiresIn,
		CreatedAt: r.CreatedAt.UTC(),
	}
}
