package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/pkg/enums"
)

// SettingsRowID is the fixed primary key of the singleton settings row.
// Lazy creation upserts against this id, so concurrent first reads cannot
// produce two rows.
var SettingsRowID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Settings is the shop-wide configuration used by every price computation.
type Settings struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	TaxRate      decimal.Decimal `gorm:"column:tax_rate;type:numeric(6,4);not null"`
	Currency     enums.Currency  `gorm:"column:currency;not null;default:'usd'"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// DefaultSettings returns the row created on first read when no settings
// record exists yet.
func DefaultSettings() Settings {
	return Settings{
		ID:           SettingsRowID,
		ShippingCost: decimal.RequireFromString("5.00"),
		TaxRate:      decimal.RequireFromString("0.20"),
		Currency:     enums.CurrencyUSD,
	}
}
