package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/printmade/printshop-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context) (*models.Settings, error) {
	var row models.Settings
	err := r.db.WithContext(ctx).
		Where("id = ?", models.SettingsRowID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// InsertDefaultIfMissing upserts the default row under the sentinel id.
// Losing the conflict race is fine, the winner's row is read back.
func (r *repository) InsertDefaultIfMissing(ctx context.Context) error {
	row := models.DefaultSettings()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *repository) Update(ctx context.Context, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Settings{}).
		Where("id = ?", models.SettingsRowID).
		Updates(updates).Error
}
