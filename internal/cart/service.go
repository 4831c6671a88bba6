package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db"
	"github.com/printmade/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
	"github.com/printmade/printshop-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service exposes the per-user cart operations.
type Service interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, customization types.Customization) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	// SnapshotTx locks and returns the user's cart inside an open
	// transaction. A nil cart means the user has none yet.
	SnapshotTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Cart, error)
	// ClearTx deletes the cart's items inside an open transaction.
	ClearTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

func (s *service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cart, err := s.getOrCreate(ctx, s.repo.WithTx(tx), userID)
		if err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) getOrCreate(ctx context.Context, repo Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := repo.Create(ctx, &models.Cart{ID: uuid.New(), UserID: userID})
	if err != nil {
		// another request won the per-user race, read its row back
		if db.IsUniqueViolation(err, "idx_carts_user") {
			cart, findErr := repo.FindByUser(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reload cart")
			}
			return cart, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, customization types.Customization) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.products.Snapshot(ctx, tx, []uuid.UUID{productID}); err != nil {
			return err
		}

		cart, err := s.getOrCreate(ctx, repo, userID)
		if err != nil {
			return err
		}
		locked, err := repo.FindByUserLocked(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
		}
		cart = locked

		// merge rule: same product + byte-identical customization
		for _, item := range cart.Items {
			if item.ProductID == productID && item.Customization.Equal(customization) {
				if err := repo.UpdateItemQuantity(ctx, item.ID, item.Quantity+quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item")
				}
				return s.reload(ctx, repo, userID, &out)
			}
		}

		item := &models.CartItem{
			ID:            uuid.New(),
			CartID:        cart.ID,
			ProductID:     productID,
			Quantity:      quantity,
			Customization: customization,
		}
		if _, err := repo.CreateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
		}
		return s.reload(ctx, repo, userID, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.ownedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}
		if err := repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		return s.reload(ctx, repo, userID, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.ownedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return s.reload(ctx, repo, userID, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if err := repo.DeleteItemsByCart(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
}

func (s *service) SnapshotTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.WithTx(tx).FindByUserLocked(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) ClearTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	if err := s.repo.WithTx(tx).DeleteItemsByCart(ctx, cartID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// ownedItem resolves an item and enforces that its cart belongs to userID.
func (s *service) ownedItem(ctx context.Context, repo Repository, userID, itemID uuid.UUID) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	item, err := repo.FindItem(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	cart, err := repo.FindByUserLocked(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item does not belong to user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
	}
	if item.CartID != cart.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item does not belong to user")
	}
	return item, nil
}

func (s *service) reload(ctx context.Context, repo Repository, userID uuid.UUID, out **models.Cart) error {
	cart, err := repo.FindByUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	*out = cart
	return nil
}
