package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
)

// Repository defines persistence operations for carts and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	// FindByUserLocked takes a row lock on the cart so same-user mutations
	// serialize inside their transactions.
	FindByUserLocked(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error)
	FindItemsByCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItemsByCart(ctx context.Context, cartID uuid.UUID) error
}
