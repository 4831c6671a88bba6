package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/internal/pricing"
	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/enums"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
	"github.com/printmade/printshop-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type settingsLoader interface {
	GetTx(ctx context.Context, tx *gorm.DB) (*models.Settings, error)
}

type cartSnapshotter interface {
	SnapshotTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Cart, error)
	ClearTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID     uuid.UUID
	Quantity      int
	Customization types.Customization
}

// FileAttachment binds an already-stored artwork file to an order line by
// its position in the item list.
type FileAttachment struct {
	ItemIndex int
	Path      string
}

// Input carries everything the pipeline needs to place an order.
type Input struct {
	UserID          uuid.UUID
	Items           []ItemInput
	ShippingAddress string
	BillingAddress  string
	PaymentID       *string
	Files           []FileAttachment
}

// Service places orders atomically.
type Service interface {
	Checkout(ctx context.Context, input Input) (*models.Order, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	settings settingsLoader
	cart     cartSnapshotter
}

// NewService builds a checkout service with the required dependencies.
func NewService(repo Repository, tx txRunner, products productLoader, settings settingsLoader, cart cartSnapshotter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart snapshotter required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		settings: settings,
		cart:     cart,
	}, nil
}

// Checkout runs the whole pipeline in one transaction: resolve items (from
// the request or the user's cart), price them, attach artwork files, persist
// order + items + payment and clear the cart. Any failure rolls the whole
// order back.
func (s *service) Checkout(ctx context.Context, input Input) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if strings.TrimSpace(input.BillingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing address required")
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		items := input.Items
		var cartID *uuid.UUID

		cartRow, err := s.cart.SnapshotTx(ctx, tx, input.UserID)
		if err != nil {
			return err
		}
		if cartRow != nil {
			cartID = &cartRow.ID
		}

		if len(items) == 0 && cartRow != nil {
			for _, line := range cartRow.Items {
				items = append(items, ItemInput{
					ProductID:     line.ProductID,
					Quantity:      line.Quantity,
					Customization: line.Customization,
				})
			}
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
		}

		items, err = applyAttachments(items, input.Files)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(items))
		lines := make([]pricing.LineInput, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ProductID)
			lines = append(lines, pricing.LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		snapshot, err := s.products.Snapshot(ctx, tx, ids)
		if err != nil {
			return err
		}
		settings, err := s.settings.GetTx(ctx, tx)
		if err != nil {
			return err
		}

		// orders always carry shipping, even for zero-subtotal carts
		quote, err := pricing.Compute(lines, snapshot, *settings, pricing.ShippingPolicy{})
		if err != nil {
			return err
		}

		paymentStatus := enums.PaymentStatusPending
		if input.PaymentID != nil && *input.PaymentID != "" {
			paymentStatus = enums.PaymentStatusSucceeded
		}

		order := &models.Order{
			ID:              uuid.New(),
			UserID:          input.UserID,
			Total:           pricing.RoundMoney(quote.Total),
			ShippingCost:    pricing.RoundMoney(quote.Shipping),
			TaxAmount:       pricing.RoundMoney(quote.TaxAmount),
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			BillingAddress:  strings.TrimSpace(input.BillingAddress),
			PaymentID:       input.PaymentID,
			Status:          enums.OrderStatusPending,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		for i, item := range items {
			orderItems = append(orderItems, models.OrderItem{
				ID:            uuid.New(),
				OrderID:       order.ID,
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				UnitPrice:     pricing.RoundMoney(quote.Lines[i].UnitPrice),
				Customization: item.Customization,
			})
		}
		if err := repo.CreateOrderItems(ctx, orderItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		payment := &models.Payment{
			ID:              uuid.New(),
			OrderID:         order.ID,
			Amount:          order.Total,
			Currency:        settings.Currency,
			StripePaymentID: input.PaymentID,
			Status:          paymentStatus,
		}
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		if cartID != nil {
			if err := s.cart.ClearTx(ctx, tx, *cartID); err != nil {
				return err
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return order, nil
}

// applyAttachments merges each file's stored path into its item's
// customization under the reserved "file" key. Indexes are validated
// against the resolved item list, out-of-range attachments reject the
// whole checkout.
func applyAttachments(items []ItemInput, files []FileAttachment) ([]ItemInput, error) {
	if len(files) == 0 {
		return items, nil
	}
	out := make([]ItemInput, len(items))
	copy(out, items)

	for _, file := range files {
		if file.ItemIndex < 0 || file.ItemIndex >= len(out) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("file attachment references item %d, order has %d items", file.ItemIndex, len(out)))
		}
		if strings.TrimSpace(file.Path) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file attachment path required")
		}
		out[file.ItemIndex].Customization = out[file.ItemIndex].Customization.WithFile(file.Path)
	}
	return out, nil
}
