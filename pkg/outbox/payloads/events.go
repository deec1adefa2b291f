package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleAcceptedEvent is emitted when a listing is converted into a sale.
type SaleAcceptedEvent struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	ListingID   uuid.UUID       `json:"listing_id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	Payout      decimal.Decimal `json:"payout"`
	ExternalID  string          `json:"external_id,omitempty"`
}
