package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is a seller's active offer: one catalog product in one size at a
// chosen price. Payout is derived from the fee config current at the last
// price change and is not recomputed when the config changes later.
type Listing struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID     uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index:idx_listings_product_size"`
	Name          string           `gorm:"column:name;not null"`
	Size          string           `gorm:"column:size;not null;index:idx_listings_product_size"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	Payout        decimal.Decimal  `gorm:"column:payout;type:numeric(12,2);not null"`
	OriginalPrice *decimal.Decimal `gorm:"column:original_price;type:numeric(12,2)"`
	SKU           string           `gorm:"column:sku;not null"`
	ImageURL      *string          `gorm:"column:image_url"`
	Profile       *Profile         `gorm:"foreignKey:UserID;references:ID"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
