package controllers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/printmade/printshop-backend/api/responses"
	"github.com/printmade/printshop-backend/api/validators"
	"github.com/printmade/printshop-backend/internal/checkout"
	"github.com/printmade/printshop-backend/internal/orders"
	"github.com/printmade/printshop-backend/internal/uploads"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
	"github.com/printmade/printshop-backend/pkg/logger"
	"github.com/printmade/printshop-backend/pkg/types"
)

// Multipart checkouts put the order JSON in this form field and attach
// artwork files as parts named artwork_<itemIndex>.
const (
	orderFormField     = "order"
	artworkFieldPrefix = "artwork_"
	maxCheckoutFormMem = 32 << 20
)

type orderItemRequest struct {
	ProductID     uuid.UUID           `json:"product_id" validate:"required"`
	Quantity      int                 `json:"quantity" validate:"required,min=1"`
	Customization types.Customization `json:"customization,omitempty"`
}

type orderCreateRequest struct {
	Items           []orderItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	BillingAddress  string             `json:"billing_address" validate:"required"`
	PaymentID       *string            `json:"payment_id,omitempty"`
}

func (req orderCreateRequest) toInput(userID uuid.UUID) checkout.Input {
	items := make([]checkout.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, checkout.ItemInput{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			Customization: item.Customization,
		})
	}
	return checkout.Input{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentID:       req.PaymentID,
	}
}

// OrderCreate places an order. It accepts a JSON body, or multipart form
// data when the checkout ships artwork files along with the order payload.
func OrderCreate(svc checkout.Service, files uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeCheckoutRequest(r, files, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderView(order))
	}
}

func decodeCheckoutRequest(r *http.Request, files uploads.Service, userID uuid.UUID) (checkout.Input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		var payload orderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return checkout.Input{}, err
		}
		return payload.toInput(userID), nil
	}

	if err := r.ParseMultipartForm(maxCheckoutFormMem); err != nil {
		return checkout.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	raw := r.FormValue(orderFormField)
	if strings.TrimSpace(raw) == "" {
		return checkout.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "order form field is required")
	}

	var payload orderCreateRequest
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return checkout.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order payload")
	}
	if err := validators.ValidateStruct(&payload); err != nil {
		return checkout.Input{}, err
	}

	input := payload.toInput(userID)

	attachments, err := storeArtworkFiles(r, files)
	if err != nil {
		return checkout.Input{}, err
	}
	input.Files = attachments

	return input, nil
}

func storeArtworkFiles(r *http.Request, files uploads.Service) ([]checkout.FileAttachment, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		return nil, nil
	}
	if files == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "uploads service unavailable")
	}

	attachments := make([]checkout.FileAttachment, 0, len(r.MultipartForm.File))
	for field, headers := range r.MultipartForm.File {
		if !strings.HasPrefix(field, artworkFieldPrefix) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unexpected file field "+field)
		}
		index, err := strconv.Atoi(strings.TrimPrefix(field, artworkFieldPrefix))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file field "+field)
		}

		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open uploaded file")
			}

			path, err := files.Store(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
			file.Close()
			if err != nil {
				return nil, err
			}

			attachments = append(attachments, checkout.FileAttachment{
				ItemIndex: index,
				Path:      path,
			})
		}
	}
	return attachments, nil
}

// OrdersList returns the caller's order history.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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

		responses.WriteSuccess(w, newOrderViews(list))
	}
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForUser(r.Context(), userID, roleFromContext(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderView(order))
	}
}

type orderStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,max=64"`
}

func AdminOrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		list, err := svc.AdminList(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderViews(list))
	}
}

func AdminOrderStatusUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderStatusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AdminUpdateStatus(r.Context(), orderID, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderView(order))
	}
}
