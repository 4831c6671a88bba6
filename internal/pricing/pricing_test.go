package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

func testSettings(shipping, taxRate string) models.Settings {
	return models.Settings{
		ShippingCost: decimal.RequireFromString(shipping),
		TaxRate:      decimal.RequireFromString(taxRate),
	}
}

func TestComputeSaleDiscount(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	discount := decimal.RequireFromString("10")
	products := map[uuid.UUID]models.Product{
		productID: {
			ID:                 productID,
			Price:              decimal.RequireFromString("100.00"),
			OnSale:             true,
			DiscountPercentage: &discount,
		},
	}

	quote, err := Compute(
		[]LineInput{{ProductID: productID, Quantity: 2}},
		products,
		testSettings("0", "0"),
		ShippingPolicy{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.Subtotal.Equal(decimal.RequireFromString("180")) {
		t.Fatalf("expected subtotal 180, got %s", quote.Subtotal)
	}
	if !quote.Total.Equal(decimal.RequireFromString("180")) {
		t.Fatalf("expected total 180, got %s", quote.Total)
	}
	if !quote.Lines[0].UnitPrice.Equal(decimal.RequireFromString("90")) {
		t.Fatalf("expected unit price 90, got %s", quote.Lines[0].UnitPrice)
	}
}

func TestComputeTotalIdentity(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	products := map[uuid.UUID]models.Product{
		a: {ID: a, Price: decimal.RequireFromString("19.99")},
		b: {ID: b, Price: decimal.RequireFromString("7.45")},
	}
	settings := testSettings("5.00", "0.20")

	quote, err := Compute(
		[]LineInput{
			{ProductID: a, Quantity: 3},
			{ProductID: b, Quantity: 1},
		},
		products,
		settings,
		ShippingPolicy{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := decimal.Zero
	for _, line := range quote.Lines {
		sum = sum.Add(line.LineTotal)
	}
	if !quote.Subtotal.Equal(sum) {
		t.Fatalf("subtotal %s does not match line sum %s", quote.Subtotal, sum)
	}

	identity := quote.Subtotal.Add(quote.Shipping).Add(quote.TaxAmount)
	if !quote.Total.Equal(identity) {
		t.Fatalf("total %s breaks identity %s", quote.Total, identity)
	}
	if !quote.TaxAmount.Equal(quote.Subtotal.Mul(settings.TaxRate)) {
		t.Fatalf("tax %s is not subtotal*rate", quote.TaxAmount)
	}
}

func TestComputeMissingProductAborts(t *testing.T) {
	t.Parallel()

	known := uuid.New()
	products := map[uuid.UUID]models.Product{
		known: {ID: known, Price: decimal.RequireFromString("10.00")},
	}

	_, err := Compute(
		[]LineInput{
			{ProductID: known, Quantity: 1},
			{ProductID: uuid.New(), Quantity: 1},
		},
		products,
		testSettings("5.00", "0.20"),
		ShippingPolicy{},
	)
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestComputeShippingWaiver(t *testing.T) {
	t.Parallel()

	settings := testSettings("5.00", "0.20")

	waived, err := Compute(nil, nil, settings, ShippingPolicy{WaiveOnEmptySubtotal: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !waived.Total.IsZero() {
		t.Fatalf("expected zero total with waiver, got %s", waived.Total)
	}

	applied, err := Compute(nil, nil, settings, ShippingPolicy{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied.Total.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected shipping-only total 5.00, got %s", applied.Total)
	}
}

func TestComputeRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	products := map[uuid.UUID]models.Product{
		productID: {ID: productID, Price: decimal.RequireFromString("10.00")},
	}

	_, err := Compute(
		[]LineInput{{ProductID: productID, Quantity: 0}},
		products,
		testSettings("0", "0"),
		ShippingPolicy{},
	)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRoundingAtBoundary(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	products := map[uuid.UUID]models.Product{
		productID: {ID: productID, Price: decimal.RequireFromString("0.333")},
	}

	quote, err := Compute(
		[]LineInput{{ProductID: productID, Quantity: 3}},
		products,
		testSettings("0", "0"),
		ShippingPolicy{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// full precision internally, rounded only by the boundary helper
	if !quote.Total.Equal(decimal.RequireFromString("0.999")) {
		t.Fatalf("expected full-precision 0.999, got %s", quote.Total)
	}
	if got := RoundMoney(quote.Total); !got.Equal(decimal.RequireFromString("1.00")) {
		t.Fatalf("expected rounded 1.00, got %s", got)
	}
	if got := MinorUnits(quote.Total); got != 100 {
		t.Fatalf("expected 100 minor units, got %d", got)
	}
}
