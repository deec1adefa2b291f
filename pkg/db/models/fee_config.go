package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeConfig is the single admin-managed row driving every payout calculation.
// FeePercent is a fraction in [0,1]; FeeFixed is a flat per-sale deduction.
type FeeConfig struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FeePercent decimal.Decimal `gorm:"column:fee_percent;type:numeric(6,4);not null"`
	FeeFixed   decimal.Decimal `gorm:"column:fee_fixed;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the original admin_settings table name.
func (FeeConfig) TableName() string {
	return "admin_settings"
}
