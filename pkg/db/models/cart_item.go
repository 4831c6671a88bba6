package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printmade/printshop-backend/pkg/types"
)

// CartItem is one line of a cart. Two lines with the same product and
// byte-identical serialized customization are merged by summing quantity.
type CartItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID        uuid.UUID           `gorm:"column:cart_id;type:uuid;not null"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity      int                 `gorm:"column:quantity;not null"`
	Customization types.Customization `gorm:"column:customization;type:jsonb"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
