package httppresentation

import (
	"time"

	appauth "github.com/Zhima-Mochi/fooddelivery/internal/application/auth"
	apporder "github.com/Zhima-Mochi/fooddelivery/internal/application/order"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/order"

	"github.com/shopspring/decimal"
)

type grantRequest struct {
	GrantType    string `json:"grantType"`
	UserType     string `json:"userType"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	RefreshToken string `json:"refreshToken"`
}

type revokeRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	IssuedAt     int64  `json:"issuedAt"`
}

func toTokenResponse(p *appauth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
		IssuedAt:     p.IssuedAt,
	}
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type profileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (p profileRequest) toProfile() account.Profile {
	return account.Profile{Username: p.Username, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName}
}

type statusRequest struct {
	Status string `json:"status"`
}

type accountResponse struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Image         string    `json:"image"`
	ImagePublicID string    `json:"imagePublicId"`
	Status        string    `json:"status,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toAccountResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Role:          string(a.Role),
		Username:      a.Username,
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

func toAccountResponses(in []*account.Account) []accountResponse {
	out := make([]accountResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toAccountResponse(a))
	}
	return out
}

type coordinateDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type storeRequest struct {
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	Address               string          `json:"address"`
	City                  string          `json:"city"`
	PostalCode            string          `json:"postalCode"`
	Phone                 string          `json:"phone"`
	Category              string          `json:"category"`
	DeliveryTimeInMinutes int             `json:"deliveryTimeInMinutes"`
	DeliveryFee           decimal.Decimal `json:"deliveryFee"`
	Coordinates           []coordinateDTO `json:"coordinates"`
}

func (s storeRequest) toDetails() catalog.StoreDetails {
	coords := make([]catalog.Coordinate, 0, len(s.Coordinates))
	for _, c := range s.Coordinates {
		coords = append(coords, catalog.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude})
	}
	return catalog.StoreDetails{
		Name:                  s.Name,
		Description:           s.Description,
		Address:               s.Address,
		City:                  s.City,
		PostalCode:            s.PostalCode,
		Phone:                 s.Phone,
		Category:              s.Category,
		DeliveryTimeInMinutes: s.DeliveryTimeInMinutes,
		DeliveryFee:           s.DeliveryFee,
		Coordinates:           coords,
	}
}

type storeResponse struct {
	ID                    string          `json:"id"`
	PartnerID             string          `json:"partnerId"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	Address               string          `json:"address"`
	City                  string          `json:"city"`
	PostalCode            string          `json:"postalCode"`
	Phone                 string          `json:"phone"`
	Category              string          `json:"category"`
	DeliveryTimeInMinutes int             `json:"deliveryTimeInMinutes"`
	DeliveryFee           decimal.Decimal `json:"deliveryFee"`
	Image                 string          `json:"image"`
	ImagePublicID         string          `json:"imagePublicId"`
	Coordinates           []coordinateDTO `json:"coordinates"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

func toStoreResponse(s *catalog.Store) storeResponse {
	coords := make([]coordinateDTO, 0, len(s.Coordinates))
	for _, c := range s.Coordinates {
		coords = append(coords, coordinateDTO{Latitude: c.Latitude, Longitude: c.Longitude})
	}
	return storeResponse{
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

type productRequest struct {
	StoreID     string          `json:"storeId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (p productRequest) toDetails() catalog.ProductDetails {
	return catalog.ProductDetails{Name: p.Name, Description: p.Description, Price: p.Price, Quantity: p.Quantity}
}

type productResponse struct {
	ID            string          `json:"id"`
	StoreID       string          `json:"storeId"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Image         string          `json:"image"`
	ImagePublicID string          `json:"imagePublicId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		StoreID:       p.StoreID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Quantity:      p.Quantity,
		Image:         p.Image,
		ImagePublicID: p.ImagePublicID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type itemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type orderRequest struct {
	StoreID         string        `json:"storeId"`
	Items           []itemRequest `json:"items"`
	Address         string        `json:"address"`
	PaymentIntentID string        `json:"paymentIntentId"`
}

func (o orderRequest) items() []apporder.ItemRequest {
	out := make([]apporder.ItemRequest, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, apporder.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

type orderItemResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"productId"`
	Quantity           int             `json:"quantity"`
	ProductName        string          `json:"productName"`
	ProductDescription string          `json:"productDescription"`
	ProductImage       string          `json:"productImage"`
	ProductPrice       decimal.Decimal `json:"productPrice"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	CustomerID      string              `json:"customerId"`
	StoreID         string              `json:"storeId"`
	PartnerID       string              `json:"partnerId"`
	Items           []orderItemResponse `json:"items"`
	ItemsPrice      decimal.Decimal     `json:"itemsPrice"`
	DeliveryFee     decimal.Decimal     `json:"deliveryFee"`
	TotalPrice      decimal.Decimal     `json:"totalPrice"`
	Address         string              `json:"address"`
	PaymentIntentID string              `json:"paymentIntentId"`
	IsCanceled      bool                `json:"isCanceled"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func toOrderResponse(o *order.Order, status order.Status) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
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
	return orderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		StoreID:         o.StoreID,
		PartnerID:       o.PartnerID,
		Items:           items,
		ItemsPrice:      o.ItemsPrice,
		DeliveryFee:     o.DeliveryFee,
		TotalPrice:      o.TotalPrice,
		Address:         o.Address,
		PaymentIntentID: o.PaymentIntentID,
		IsCanceled:      o.IsCanceled,
		Status:          string(status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type checkoutResponse struct {
	SessionID string        `json:"sessionId"`
	URL       string        `json:"url"`
	Order     orderResponse `json:"order"`
}

type refundResponse struct {
	RefundID string        `json:"refundId"`
	Order    orderResponse `json:"order"`
}
