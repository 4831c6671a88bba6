package changerequests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a change request repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.OrderChangeRequest) (*models.OrderChangeRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.OrderChangeRequest, error) {
	var request models.OrderChangeRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListPending(ctx context.Context) ([]models.OrderChangeRequest, error) {
	var list []models.OrderChangeRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ChangeRequestStatusPending).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.OrderChangeRequest, error) {
	var list []models.OrderChangeRequest
	err := r.db.WithContext(ctx).
		Where("requested_by = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) UpdateReview(ctx context.Context, id uuid.UUID, status enums.ChangeRequestStatus, adminNotes *string) error {
	updates := map[string]any{"status": status}
	if adminNotes != nil {
		updates["admin_notes"] = adminNotes
	}
	return r.db.WithContext(ctx).
		Model(&models.OrderChangeRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}
