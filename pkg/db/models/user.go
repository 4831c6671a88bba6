package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printmade/printshop-backend/pkg/enums"
)

// User is the minimal identity record carts and orders reference. Credential
// storage and session issuance live in the external auth service.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string         `gorm:"column:email;not null;uniqueIndex:idx_users_email"`
	Role      enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
