package stripewebhook

import (
	"context"

	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
)

// Repository resolves provider intent ids back to payment rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds the intent lookup bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("stripe_payment_id = ?", intentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
