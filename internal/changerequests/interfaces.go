package changerequests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/enums"
)

// Repository defines persistence operations for order change requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.OrderChangeRequest) (*models.OrderChangeRequest, error)
	Find(ctx context.Context, id uuid.UUID) (*models.OrderChangeRequest, error)
	ListPending(ctx context.Context) ([]models.OrderChangeRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.OrderChangeRequest, error)
	UpdateReview(ctx context.Context, id uuid.UUID, status enums.ChangeRequestStatus, adminNotes *string) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
}
