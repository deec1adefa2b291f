package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jsivak/soleplug-backend/pkg/enums"
)

// SaleStatusHistory is the append-only audit trail of a sale. One row per
// status or note change; rows are never mutated or deleted.
type SaleStatusHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID    uuid.UUID         `gorm:"column:sale_id;type:uuid;not null;index"`
	OldStatus *enums.SaleStatus `gorm:"column:old_status;type:text"`
	NewStatus enums.SaleStatus  `gorm:"column:new_status;type:text;not null"`
	Notes     *string           `gorm:"column:notes"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the audit table name.
func (SaleStatusHistory) TableName() string {
	return "sales_status_history"
}
