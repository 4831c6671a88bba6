package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
)

// Repository defines persistence operations for the singleton settings row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context) (*models.Settings, error)
	InsertDefaultIfMissing(ctx context.Context) error
	Update(ctx context.Context, updates map[string]any) error
}
