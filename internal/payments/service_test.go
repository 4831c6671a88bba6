package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/internal/cart"
	"github.com/printmade/printshop-backend/internal/products"
	"github.com/printmade/printshop-backend/internal/settings"
	"github.com/printmade/printshop-backend/pkg/db"
	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/enums"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

type stubIntentClient struct {
	params    *stripe.PaymentIntentParams
	intent    *stripe.PaymentIntent
	err       error
	getID     string
	getIntent *stripe.PaymentIntent
	getErr    error
}

func (s *stubIntentClient) Create(_ context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return s.intent, nil
}

func (s *stubIntentClient) Get(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	s.getID = id
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getIntent, nil
}

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT,
  description TEXT,
  price TEXT NOT NULL,
  on_sale INTEGER NOT NULL DEFAULT 0,
  discount_percentage TEXT,
  category TEXT NOT NULL DEFAULT '',
  attributes TEXT,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS settings (
  id TEXT PRIMARY KEY,
  shipping_cost TEXT NOT NULL,
  tax_rate TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_user ON carts (user_id);
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  customization TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total TEXT NOT NULL,
  shipping_cost TEXT NOT NULL,
  tax_amount TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  billing_address TEXT NOT NULL,
  payment_id TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  amount TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  stripe_payment_id TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)

	return conn
}

type paymentsEnv struct {
	conn   *gorm.DB
	svc    Service
	cart   cart.Service
	stripe *stubIntentClient
}

func newPaymentsEnv(t *testing.T) paymentsEnv {
	t.Helper()
	conn := setupPaymentsTestDB(t)
	runner := db.FromGorm(conn)

	productsSvc, err := products.NewService(products.NewRepository(conn))
	require.NoError(t, err)
	settingsSvc, err := settings.NewService(settings.NewRepository(conn), runner)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cart.NewRepository(conn), runner, productsSvc)
	require.NoError(t, err)

	stripeStub := &stubIntentClient{
		intent: &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"},
		getIntent: &stripe.PaymentIntent{
			ID:       "pi_123",
			Status:   stripe.PaymentIntentStatusSucceeded,
			Amount:   2900,
			Currency: stripe.CurrencyUSD,
		},
	}
	svc, err := NewService(NewRepository(conn), runner, cartSvc, productsSvc, settingsSvc, stripeStub, 0)
	require.NoError(t, err)

	return paymentsEnv{conn: conn, svc: svc, cart: cartSvc, stripe: stripeStub}
}

func (e paymentsEnv) seedProduct(t *testing.T, price string) models.Product {
	t.Helper()
	product := models.Product{
		ID:    uuid.New(),
		Name:  "Canvas Print",
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, e.conn.Create(&product).Error)
	return product
}

func (e paymentsEnv) seedOrder(t *testing.T, total string) models.Order {
	t.Helper()
	order := models.Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Total:           decimal.RequireFromString(total),
		ShippingCost:    decimal.RequireFromString("5.00"),
		TaxAmount:       decimal.RequireFromString("0.00"),
		ShippingAddress: "1 Print Lane",
		BillingAddress:  "1 Print Lane",
		Status:          enums.OrderStatusPending,
	}
	require.NoError(t, e.conn.Create(&order).Error)

	payment := models.Payment{
		ID:      uuid.New(),
		OrderID: order.ID,
		Amount:  order.Total,
		Status:  enums.PaymentStatusPending,
	}
	require.NoError(t, e.conn.Create(&payment).Error)
	return order
}

func TestCreateIntentRejectsEmptyCart(t *testing.T) {
	env := newPaymentsEnv(t)

	_, err := env.svc.CreateIntent(context.Background(), uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
	require.Nil(t, env.stripe.params, "provider must not be called")
}

func TestCreateIntentAmountAndMetadata(t *testing.T) {
	env := newPaymentsEnv(t)
	product := env.seedProduct(t, "10.00")
	userID := uuid.New()

	_, err := env.cart.AddItem(context.Background(), userID, product.ID, 2, nil)
	require.NoError(t, err)

	result, err := env.svc.CreateIntent(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "pi_123", result.IntentID)
	require.Equal(t, "pi_123_secret", result.ClientSecret)

	require.NotNil(t, env.stripe.params)
	// 20 + 5 shipping + 4 tax = 29.00 -> 2900 minor units
	require.EqualValues(t, 2900, *env.stripe.params.Amount)
	require.Equal(t, "usd", *env.stripe.params.Currency)
	require.Equal(t, userID.String(), env.stripe.params.Metadata["user_id"])
	require.NotEmpty(t, env.stripe.params.Metadata["cart_id"])
}

func TestCreateIntentWaivesShippingOnZeroSubtotal(t *testing.T) {
	env := newPaymentsEnv(t)
	product := env.seedProduct(t, "0.00")
	userID := uuid.New()

	_, err := env.cart.AddItem(context.Background(), userID, product.ID, 1, nil)
	require.NoError(t, err)

	_, err = env.svc.CreateIntent(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 0, *env.stripe.params.Amount)
}

func TestCreateIntentProviderFailure(t *testing.T) {
	env := newPaymentsEnv(t)
	product := env.seedProduct(t, "10.00")
	userID := uuid.New()

	_, err := env.cart.AddItem(context.Background(), userID, product.ID, 1, nil)
	require.NoError(t, err)

	env.stripe.err = errors.New("stripe unavailable")
	_, err = env.svc.CreateIntent(context.Background(), userID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency), "got %v", err)
}

func TestConfirmIsIdempotent(t *testing.T) {
	env := newPaymentsEnv(t)
	order := env.seedOrder(t, "29.00")

	first, err := env.svc.Confirm(context.Background(), order.ID, "pi_123")
	require.NoError(t, err)
	require.Equal(t, "COMPLETED", first.Status.String())
	require.NotNil(t, first.PaymentID)
	require.Equal(t, "pi_123", *first.PaymentID)

	second, err := env.svc.Confirm(context.Background(), order.ID, "pi_123")
	require.NoError(t, err)
	require.Equal(t, "COMPLETED", second.Status.String())

	var paymentCount int64
	require.NoError(t, env.conn.Table("payments").Where("order_id = ?", order.ID).Count(&paymentCount).Error)
	require.EqualValues(t, 1, paymentCount)

	var payment models.Payment
	require.NoError(t, env.conn.Where("order_id = ?", order.ID).First(&payment).Error)
	require.Equal(t, "SUCCEEDED", payment.Status.String())
	require.True(t, payment.Amount.Equal(order.Total))
}

func (e paymentsEnv) requireOrderStatus(t *testing.T, id uuid.UUID, want string) {
	t.Helper()
	var order models.Order
	require.NoError(t, e.conn.First(&order, "id = ?", id).Error)
	require.Equal(t, want, order.Status.String())
}

func TestConfirmRejectsUnknownIntent(t *testing.T) {
	env := newPaymentsEnv(t)
	order := env.seedOrder(t, "29.00")

	env.stripe.getErr = errors.New("no such payment_intent")
	_, err := env.svc.Confirm(context.Background(), order.ID, "pi_fabricated")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency), "got %v", err)
	require.Equal(t, "pi_fabricated", env.stripe.getID, "provider must be consulted")
	env.requireOrderStatus(t, order.ID, "PENDING")
}

func TestConfirmRejectsUnsucceededIntent(t *testing.T) {
	env := newPaymentsEnv(t)
	order := env.seedOrder(t, "29.00")

	env.stripe.getIntent.Status = stripe.PaymentIntentStatusRequiresPaymentMethod
	_, err := env.svc.Confirm(context.Background(), order.ID, "pi_123")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	env.requireOrderStatus(t, order.ID, "PENDING")
}

func TestConfirmRejectsAmountMismatch(t *testing.T) {
	env := newPaymentsEnv(t)
	order := env.seedOrder(t, "29.00")

	env.stripe.getIntent.Amount = 100
	_, err := env.svc.Confirm(context.Background(), order.ID, "pi_123")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	env.requireOrderStatus(t, order.ID, "PENDING")
}

func TestConfirmRejectsCurrencyMismatch(t *testing.T) {
	env := newPaymentsEnv(t)
	order := env.seedOrder(t, "29.00")

	env.stripe.getIntent.Currency = stripe.CurrencyEUR
	_, err := env.svc.Confirm(context.Background(), order.ID, "pi_123")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	env.requireOrderStatus(t, order.ID, "PENDING")
}

func TestConfirmMissingOrder(t *testing.T) {
	env := newPaymentsEnv(t)

	_, err := env.svc.Confirm(context.Background(), uuid.New(), "pi_123")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}
