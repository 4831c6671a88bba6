package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db"
	"github.com/printmade/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
	"github.com/printmade/printshop-backend/pkg/types"
)

const slugIndexName = "idx_products_slug"

// Service exposes catalog reads plus the admin mutation surface.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	// Snapshot loads the referenced products keyed by id. Missing ids abort
	// with a not-found error so pricing never sees a partial catalog read.
	Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// CreateInput carries the admin-supplied product fields.
type CreateInput struct {
	Name               string
	Slug               *string
	Description        *string
	Price              decimal.Decimal
	OnSale             bool
	DiscountPercentage *decimal.Decimal
	Category           string
	Attributes         types.Attributes
	ImageURL           *string
}

// UpdateInput mirrors CreateInput with every field optional.
type UpdateInput struct {
	Name               *string
	Slug               *string
	Description        *string
	Price              *decimal.Decimal
	OnSale             *bool
	DiscountPercentage *decimal.Decimal
	ClearDiscount      bool
	Category           *string
	Attributes         types.Attributes
	ImageURL           *string
}

type service struct {
	repo Repository
}

// NewService builds a products service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if err := validateDiscount(input.DiscountPercentage); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(input.Name),
		Slug:               normalizeSlug(input.Slug),
		Description:        input.Description,
		Price:              input.Price,
		OnSale:             input.OnSale,
		DiscountPercentage: input.DiscountPercentage,
		Category:           input.Category,
		Attributes:         input.Attributes,
		ImageURL:           input.ImageURL,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, slugIndexName) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Slug != nil {
		updates["slug"] = normalizeSlug(input.Slug)
	}
	if input.Description != nil {
		updates["description"] = input.Description
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		updates["price"] = *input.Price
	}
	if input.OnSale != nil {
		updates["on_sale"] = *input.OnSale
	}
	if input.ClearDiscount {
		updates["discount_percentage"] = nil
	} else if input.DiscountPercentage != nil {
		if err := validateDiscount(input.DiscountPercentage); err != nil {
			return nil, err
		}
		updates["discount_percentage"] = *input.DiscountPercentage
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Attributes != nil {
		updates["attributes"] = input.Attributes
	}
	if input.ImageURL != nil {
		updates["image_url"] = input.ImageURL
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no product fields provided")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if db.IsUniqueViolation(err, slugIndexName) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.Find(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	rows, err := s.repo.WithTx(tx).FindByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	snapshot := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		snapshot[row.ID] = row
	}
	for _, id := range unique {
		if _, ok := snapshot[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
		}
	}
	return snapshot, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return nil
}

func validateDiscount(discount *decimal.Decimal) error {
	if discount == nil {
		return nil
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 0 and 100")
	}
	return nil
}

func normalizeSlug(slug *string) *string {
	if slug == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*slug))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
