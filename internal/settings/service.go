package settings

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/enums"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes shop-wide settings reads and the admin mutation.
type Service interface {
	Get(ctx context.Context) (*models.Settings, error)
	GetTx(ctx context.Context, tx *gorm.DB) (*models.Settings, error)
	Update(ctx context.Context, input UpdateInput) (*models.Settings, error)
}

// UpdateInput carries the admin-editable settings fields. Nil fields are
// left untouched.
type UpdateInput struct {
	ShippingCost *decimal.Decimal
	TaxRate      *decimal.Decimal
	Currency     *string
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a settings service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Get returns the settings row, creating the defaults on first read.
func (s *service) Get(ctx context.Context) (*models.Settings, error) {
	var out *models.Settings
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		row, err := s.getOrCreate(ctx, s.repo.WithTx(tx))
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTx reads settings inside an already-open transaction so checkout and
// intent creation price against one consistent snapshot.
func (s *service) GetTx(ctx context.Context, tx *gorm.DB) (*models.Settings, error) {
	return s.getOrCreate(ctx, s.repo.WithTx(tx))
}

func (s *service) getOrCreate(ctx context.Context, repo Repository) (*models.Settings, error) {
	row, err := repo.Find(ctx)
	if err == nil {
		return row, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}

	if err := repo.InsertDefaultIfMissing(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default settings")
	}
	row, err = repo.Find(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload settings")
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Settings, error) {
	updates := map[string]any{}

	if input.ShippingCost != nil {
		if input.ShippingCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost must not be negative")
		}
		updates["shipping_cost"] = *input.ShippingCost
	}
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be between 0 and 1")
		}
		updates["tax_rate"] = *input.TaxRate
	}
	if input.Currency != nil {
		currency, err := enums.ParseCurrency(*input.Currency)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown currency")
		}
		updates["currency"] = currency
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no settings fields provided")
	}

	var out *models.Settings
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.getOrCreate(ctx, repo); err != nil {
			return err
		}
		if err := repo.Update(ctx, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settings")
		}
		row, err := repo.Find(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload settings")
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
