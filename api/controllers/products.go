package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/printmade/printshop-backend/api/responses"
	"github.com/printmade/printshop-backend/api/validators"
	"github.com/printmade/printshop-backend/internal/products"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
	"github.com/printmade/printshop-backend/pkg/logger"
	"github.com/printmade/printshop-backend/pkg/types"
)

type productCreateRequest struct {
	Name               string           `json:"name" validate:"required,max=255"`
	Slug               *string          `json:"slug,omitempty" validate:"omitempty,max=255"`
	Description        *string          `json:"description,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	OnSale             bool             `json:"on_sale"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	Category           string           `json:"category" validate:"max=120"`
	Attributes         types.Attributes `json:"attributes,omitempty"`
	ImageURL           *string          `json:"image_url,omitempty"`
}

type productUpdateRequest struct {
	Name               *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Slug               *string          `json:"slug,omitempty" validate:"omitempty,max=255"`
	Description        *string          `json:"description,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	OnSale             *bool            `json:"on_sale,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	ClearDiscount      bool             `json:"clear_discount,omitempty"`
	Category           *string          `json:"category,omitempty" validate:"omitempty,max=120"`
	Attributes         types.Attributes `json:"attributes,omitempty"`
	ImageURL           *string          `json:"image_url,omitempty"`
}

// ProductsList exposes the public catalog.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductViews(list))
	}
}

func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductView(*product))
	}
}

// AdminProductCreate handles catalog entry creation.
func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		var payload productCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateInput{
			Name:               payload.Name,
			Slug:               payload.Slug,
			Description:        payload.Description,
			Price:              payload.Price,
			OnSale:             payload.OnSale,
			DiscountPercentage: payload.DiscountPercentage,
			Category:           payload.Category,
			Attributes:         payload.Attributes,
			ImageURL:           payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductView(*product))
	}
}

func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, products.UpdateInput{
			Name:               payload.Name,
			Slug:               payload.Slug,
			Description:        payload.Description,
			Price:              payload.Price,
			OnSale:             payload.OnSale,
			DiscountPercentage: payload.DiscountPercentage,
			ClearDiscount:      payload.ClearDiscount,
			Category:           payload.Category,
			Attributes:         payload.Attributes,
			ImageURL:           payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductView(*product))
	}
}

func AdminProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
