package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jsivak/soleplug-backend/pkg/enums"
)

// Sale is a Listing accepted by an admin, frozen at acceptance time and
// progressing through the fulfillment lifecycle. Sales are never deleted;
// terminal statuses are retained for history.
type Sale struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID   uuid.UUID           `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:ux_user_sales_listing"`
	UserID      uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID   uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Name        string              `gorm:"column:name;not null"`
	Size        string              `gorm:"column:size;not null"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Payout      decimal.Decimal     `gorm:"column:payout;type:numeric(12,2);not null"`
	SKU         string              `gorm:"column:sku;not null"`
	ImageURL    *string             `gorm:"column:image_url"`
	Status      enums.SaleStatus    `gorm:"column:status;type:text;not null;default:'accepted'"`
	ExternalID  *string             `gorm:"column:external_id"`
	StatusNotes *string             `gorm:"column:status_notes"`
	Profile     *Profile            `gorm:"foreignKey:UserID;references:ID"`
	History     []SaleStatusHistory `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the original user_sales table name.
func (Sale) TableName() string {
	return "user_sales"
}
