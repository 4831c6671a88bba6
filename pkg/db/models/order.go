package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/pkg/enums"
)

// Order is created atomically with its items and payment row. Items are
// immutable afterwards; only Status and PaymentID are mutated.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:idx_orders_user"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	ShippingCost    decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	TaxAmount       decimal.Decimal   `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	ShippingAddress string            `gorm:"column:shipping_address;not null"`
	BillingAddress  string            `gorm:"column:billing_address;not null"`
	PaymentID       *string           `gorm:"column:payment_id"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'PENDING'"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment         *Payment          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
