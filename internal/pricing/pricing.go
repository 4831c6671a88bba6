// Package pricing computes cart and order totals. It is pure: callers load
// products and settings and pass them in, so the same engine serves checkout,
// payment intents and price previews without touching the database.
package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// LineInput is one priced line: a catalog product and a quantity.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// ShippingPolicy controls how the flat shipping cost enters the total.
// Order creation always applies shipping; payment-intent creation waives it
// when the subtotal is zero so an empty quote never charges shipping alone.
type ShippingPolicy struct {
	WaiveOnEmptySubtotal bool
}

// Line is one priced output line with the unit price snapshot the order
// items persist.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote is a full-precision price breakdown. Round only when crossing a
// persistence or provider boundary.
type Quote struct {
	Lines     []Line
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Compute prices the given lines against the product snapshot and settings.
// Any line referencing a product absent from the snapshot aborts the whole
// quote with a not-found error.
func Compute(lines []LineInput, products map[uuid.UUID]models.Product, settings models.Settings, policy ShippingPolicy) (Quote, error) {
	quote := Quote{
		Subtotal: decimal.Zero,
		TaxRate:  settings.TaxRate,
	}

	for _, line := range lines {
		if line.Quantity < 1 {
			return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		product, ok := products[line.ProductID]
		if !ok {
			return Quote{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", line.ProductID))
		}

		unit := product.EffectivePrice()
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))

		quote.Lines = append(quote.Lines, Line{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		quote.Subtotal = quote.Subtotal.Add(lineTotal)
	}

	quote.Shipping = settings.ShippingCost
	if policy.WaiveOnEmptySubtotal && quote.Subtotal.IsZero() {
		quote.Shipping = decimal.Zero
	}

	quote.TaxAmount = quote.Subtotal.Mul(settings.TaxRate)
	quote.Total = quote.Subtotal.Add(quote.Shipping).Add(quote.TaxAmount)

	return quote, nil
}

// RoundMoney rounds a full-precision amount to 2 decimals, half away from
// zero, for persistence and provider payloads.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// MinorUnits converts a rounded amount into integer minor units (cents) for
// the payment provider.
func MinorUnits(amount decimal.Decimal) int64 {
	return RoundMoney(amount).Mul(oneHundred).IntPart()
}
