package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printmade/printshop-backend/pkg/enums"
	"github.com/printmade/printshop-backend/pkg/types"
)

// ChangeTypeCancel is the one change type whose approval cascades into the
// order's status. Other change types are recorded and reviewed without a
// cascade.
const ChangeTypeCancel = "CANCEL"

// OrderChangeRequest is a customer-initiated, admin-reviewed request to
// modify a placed order. The partial unique index on (order_id) WHERE
// status = 'PENDING' guarantees at most one open request per order.
type OrderChangeRequest struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index:idx_change_requests_order"`
	RequestedBy   uuid.UUID                 `gorm:"column:requested_by;type:uuid;not null"`
	ChangeType    string                    `gorm:"column:change_type;not null"`
	ChangeDetails types.JSONMap             `gorm:"column:change_details;type:jsonb"`
	Status        enums.ChangeRequestStatus `gorm:"column:status;not null;default:'PENDING'"`
	AdminNotes    *string                   `gorm:"column:admin_notes"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
