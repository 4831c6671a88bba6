package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
)

// Repository defines the reads and writes payment reconciliation performs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
