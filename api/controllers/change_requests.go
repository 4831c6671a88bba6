package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/printmade/printshop-backend/api/responses"
	"github.com/printmade/printshop-backend/api/validators"
	"github.com/printmade/printshop-backend/internal/changerequests"
	"github.com/printmade/printshop-backend/pkg/enums"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
	"github.com/printmade/printshop-backend/pkg/logger"
	"github.com/printmade/printshop-backend/pkg/types"
)

type changeRequestCreateRequest struct {
	OrderID    uuid.UUID     `json:"order_id" validate:"required"`
	ChangeType string        `json:"change_type" validate:"required,max=64"`
	Details    types.JSONMap `json:"details,omitempty"`
}

type changeRequestReviewRequest struct {
	Status     string  `json:"status" validate:"required"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// ChangeRequestCreate opens a change request against one of the caller's
// orders.
func ChangeRequestCreate(svc changerequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change request service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload changeRequestCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Create(r.Context(), changerequests.CreateInput{
			OrderID:     payload.OrderID,
			RequestedBy: userID,
			Role:        roleFromContext(r),
			ChangeType:  payload.ChangeType,
			Details:     payload.Details,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newChangeRequestView(record))
	}
}

func ChangeRequestsList(svc changerequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change request service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newChangeRequestViews(list))
	}
}

func ChangeRequestGet(svc changerequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change request service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), userID, roleFromContext(r), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newChangeRequestView(record))
	}
}

func AdminChangeRequestsPending(svc changerequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change request service unavailable"))
			return
		}

		list, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newChangeRequestViews(list))
	}
}

func AdminChangeRequestReview(svc changerequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change request service unavailable"))
			return
		}

		requestID, err := parseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload changeRequestReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseChangeRequestStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		record, err := svc.Review(r.Context(), changerequests.ReviewInput{
			RequestID:  requestID,
			Status:     status,
			AdminNotes: payload.AdminNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newChangeRequestView(record))
	}
}
