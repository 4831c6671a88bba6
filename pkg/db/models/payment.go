package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/pkg/enums"
)

// Payment is the one-to-one payment record created alongside an order and
// settled by the reconciler on provider confirmation.
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_payments_order"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency        enums.Currency      `gorm:"column:currency;not null;default:'usd'"`
	StripePaymentID *string             `gorm:"column:stripe_payment_id"`
	Status          enums.PaymentStatus `gorm:"column:status;not null;default:'PENDING'"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
