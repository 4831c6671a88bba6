package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/pkg/types"
)

// Product is an administrator-owned catalog entry. Pricing reads it but
// never mutates it; order items snapshot its price at checkout.
type Product struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string           `gorm:"column:name;not null"`
	Slug               *string          `gorm:"column:slug;uniqueIndex:idx_products_slug"`
	Description        *string          `gorm:"column:description"`
	Price              decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	OnSale             bool             `gorm:"column:on_sale;not null;default:false"`
	DiscountPercentage *decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2)"`
	Category           string           `gorm:"column:category;not null;default:''"`
	Attributes         types.Attributes `gorm:"column:attributes;type:jsonb"`
	ImageURL           *string          `gorm:"column:image_url"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the unit price after the active sale discount.
func (p Product) EffectivePrice() decimal.Decimal {
	if !p.OnSale || p.DiscountPercentage == nil {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(p.DiscountPercentage.Div(decimal.NewFromInt(100)))
	return p.Price.Mul(factor)
}
