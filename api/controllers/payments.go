package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/printmade/printshop-backend/api/responses"
	"github.com/printmade/printshop-backend/api/validators"
	"github.com/printmade/printshop-backend/internal/payments"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
	"github.com/printmade/printshop-backend/pkg/logger"
)

type paymentIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

type paymentConfirmRequest struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
}

// PaymentIntentCreate prices the caller's cart and opens a provider intent.
func PaymentIntentCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateIntent(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentIntentResponse{
			IntentID:     result.IntentID,
			ClientSecret: result.ClientSecret,
		})
	}
}

// PaymentConfirm marks an order's payment settled after the provider
// reports success. Safe to call more than once for the same intent.
func PaymentConfirm(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload paymentConfirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), payload.OrderID, payload.PaymentIntentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderView(order))
	}
}
