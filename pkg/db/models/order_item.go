package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/pkg/types"
)

// OrderItem snapshots the product, quantity and unit price at order time.
// Later catalog price edits never touch persisted orders.
type OrderItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity      int                 `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal     `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Customization types.Customization `gorm:"column:customization;type:jsonb"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
