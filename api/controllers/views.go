package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/types"
)

// View types decouple API payloads from the gorm models so column renames
// never leak into the public contract.

type ProductView struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Slug               *string          `json:"slug,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	EffectivePrice     decimal.Decimal  `json:"effective_price"`
	OnSale             bool             `json:"on_sale"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	Category           string           `json:"category"`
	Attributes         types.Attributes `json:"attributes,omitempty"`
	ImageURL           *string          `json:"image_url,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func newProductView(p models.Product) ProductView {
	return ProductView{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		Price:              p.Price,
		EffectivePrice:     p.EffectivePrice(),
		OnSale:             p.OnSale,
		DiscountPercentage: p.DiscountPercentage,
		Category:           p.Category,
		Attributes:         p.Attributes,
		ImageURL:           p.ImageURL,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func newProductViews(products []models.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	return views
}

type CartItemView struct {
	ID            uuid.UUID           `json:"id"`
	ProductID     uuid.UUID           `json:"product_id"`
	Quantity      int                 `json:"quantity"`
	Customization types.Customization `json:"customization,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type CartView struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Items     []CartItemView `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func newCartView(cart *models.Cart) CartView {
	items := make([]CartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemView{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			Customization: item.Customization,
			CreatedAt:     item.CreatedAt,
			UpdatedAt:     item.UpdatedAt,
		})
	}
	return CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     items,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}

type OrderItemView struct {
	ID            uuid.UUID           `json:"id"`
	ProductID     uuid.UUID           `json:"product_id"`
	Quantity      int                 `json:"quantity"`
	UnitPrice     decimal.Decimal     `json:"unit_price"`
	Customization types.Customization `json:"customization,omitempty"`
}

type PaymentView struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	StripePaymentID *string         `json:"stripe_payment_id,omitempty"`
	Status          string          `json:"status"`
}

type OrderView struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Total           decimal.Decimal `json:"total"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address"`
	PaymentID       *string         `json:"payment_id,omitempty"`
	Status          string          `json:"status"`
	Items           []OrderItemView `json:"items"`
	Payment         *PaymentView    `json:"payment,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func newOrderView(order *models.Order) OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			Customization: item.Customization,
		})
	}

	var payment *PaymentView
	if order.Payment != nil {
		payment = &PaymentView{
			ID:              order.Payment.ID,
			Amount:          order.Payment.Amount,
			Currency:        string(order.Payment.Currency),
			StripePaymentID: order.Payment.StripePaymentID,
			Status:          string(order.Payment.Status),
		}
	}

	return OrderView{
		ID:              order.ID,
		UserID:          order.UserID,
		Total:           order.Total,
		ShippingCost:    order.ShippingCost,
		TaxAmount:       order.TaxAmount,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		PaymentID:       order.PaymentID,
		Status:          string(order.Status),
		Items:           items,
		Payment:         payment,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func newOrderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i]))
	}
	return views
}

type ChangeRequestView struct {
	ID            uuid.UUID     `json:"id"`
	OrderID       uuid.UUID     `json:"order_id"`
	RequestedBy   uuid.UUID     `json:"requested_by"`
	ChangeType    string        `json:"change_type"`
	ChangeDetails types.JSONMap `json:"change_details,omitempty"`
	Status        string        `json:"status"`
	AdminNotes    *string       `json:"admin_notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func newChangeRequestView(req *models.OrderChangeRequest) ChangeRequestView {
	return ChangeRequestView{
		ID:            req.ID,
		OrderID:       req.OrderID,
		RequestedBy:   req.RequestedBy,
		ChangeType:    req.ChangeType,
		ChangeDetails: req.ChangeDetails,
		Status:        string(req.Status),
		AdminNotes:    req.AdminNotes,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
}

func newChangeRequestViews(reqs []models.OrderChangeRequest) []ChangeRequestView {
	views := make([]ChangeRequestView, 0, len(reqs))
	for i := range reqs {
		views = append(views, newChangeRequestView(&reqs[i]))
	}
	return views
}

type SettingsView struct {
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Currency     string          `json:"currency"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func newSettingsView(s *models.Settings) SettingsView {
	return SettingsView{
		ShippingCost: s.ShippingCost,
		TaxRate:      s.TaxRate,
		Currency:     string(s.Currency),
		UpdatedAt:    s.UpdatedAt,
	}
}
