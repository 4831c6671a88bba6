package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/internal/pricing"
	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/enums"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartLoader interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type productLoader interface {
	Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type settingsLoader interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// IntentResult carries what the storefront needs to collect the payment.
type IntentResult struct {
	IntentID     string
	ClientSecret string
}

// Service creates provider payment intents and reconciles confirmations.
type Service interface {
	CreateIntent(ctx context.Context, userID uuid.UUID) (*IntentResult, error)
	Confirm(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (*models.Order, error)
}

type service struct {
	repo          Repository
	tx            txRunner
	cart          cartLoader
	products      productLoader
	settings      settingsLoader
	stripe        StripePaymentIntentClient
	stripeTimeout time.Duration
}

// NewService builds a payments service with the required dependencies.
func NewService(repo Repository, tx txRunner, cart cartLoader, products productLoader, settings settingsLoader, stripeClient StripePaymentIntentClient, stripeTimeout time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	if stripeClient == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if stripeTimeout <= 0 {
		stripeTimeout = 15 * time.Second
	}
	return &service{
		repo:          repo,
		tx:            tx,
		cart:          cart,
		products:      products,
		settings:      settings,
		stripe:        stripeClient,
		stripeTimeout: stripeTimeout,
	}, nil
}

// CreateIntent prices the user's cart and asks the provider for a payment
// intent. Nothing is written locally, failures leave no trace.
func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID) (*IntentResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	cart, err := s.cart.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	lines := make([]pricing.LineInput, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
		lines = append(lines, pricing.LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	snapshot, err := s.products.Snapshot(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	// the intent path waives shipping when the subtotal is zero
	quote, err := pricing.Compute(lines, snapshot, *settings, pricing.ShippingPolicy{WaiveOnEmptySubtotal: true})
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.stripeTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(pricing.MinorUnits(quote.Total)),
		Currency: stripe.String(settings.Currency.String()),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("cart_id", cart.ID.String())

	intent, err := s.stripe.Create(callCtx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	return &IntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// Confirm marks the order paid after re-verifying the intent with the
// provider. The caller-supplied id is never trusted on its own: the intent
// must exist, be in succeeded state, and match the order's amount and the
// payment record's currency. Re-running with the same arguments lands on the
// same terminal state without error.
func (s *service) Confirm(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if paymentIntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id required")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.stripeTimeout)
	defer cancel()

	intent, err := s.stripe.Get(callCtx, paymentIntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve payment intent")
	}
	if intent == nil || intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment intent is not in succeeded state")
	}

	var out *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		payment, err := repo.FindPaymentByOrder(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		if intent.Amount != pricing.MinorUnits(order.Total) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment intent amount does not match order total")
		}
		if string(intent.Currency) != payment.Currency.String() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment intent currency does not match payment record")
		}

		settled := order.Status == enums.OrderStatusCompleted &&
			payment.Status == enums.PaymentStatusSucceeded &&
			payment.StripePaymentID != nil && *payment.StripePaymentID == paymentIntentID
		if settled {
			out = order
			return nil
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":     enums.OrderStatusCompleted,
			"payment_id": paymentIntentID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		if err := repo.UpdatePayment(ctx, payment.ID, map[string]any{
			"amount":            order.Total,
			"status":            enums.PaymentStatusSucceeded,
			"stripe_payment_id": paymentIntentID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
		}

		reloaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		out = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
