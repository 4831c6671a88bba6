package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

type paymentConfirmer interface {
	Confirm(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (*models.Order, error)
}

type paymentLookup interface {
	FindPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
}

type ServiceParams struct {
	Payments paymentConfirmer
	Lookup   paymentLookup
}

// Service settles orders when the provider reports a successful payment.
type Service struct {
	payments paymentConfirmer
	lookup   paymentLookup
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment confirmer required")
	}
	if params.Lookup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment lookup required")
	}
	return &Service{payments: params.Payments, lookup: params.Lookup}, nil
}

// HandleEvent processes payment_intent.succeeded by replaying the same
// confirmation the manual endpoint performs. Events for intents that have
// no order yet are acknowledged and left for the order-creation path.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
		}
		return s.settleIntent(ctx, &intent)
	default:
		return nil
	}
}

func (s *Service) settleIntent(ctx context.Context, intent *stripe.PaymentIntent) error {
	if intent == nil || intent.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	orderID, err := s.resolveOrder(ctx, intent)
	if err != nil {
		return err
	}
	if orderID == uuid.Nil {
		return nil
	}

	_, err = s.payments.Confirm(ctx, orderID, intent.ID)
	return err
}

func (s *Service) resolveOrder(ctx context.Context, intent *stripe.PaymentIntent) (uuid.UUID, error) {
	if raw, ok := intent.Metadata["order_id"]; ok && raw != "" {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id in intent metadata")
		}
		return orderID, nil
	}

	payment, err := s.lookup.FindPaymentByIntentID(ctx, intent.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return uuid.Nil, nil
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve payment intent")
	}
	return payment.OrderID, nil
}
