package listings

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
)

// CreateParams captures the seller input for a new listing.
type CreateParams struct {
	UserID        uuid.UUID
	ProductID     uuid.UUID
	Size          string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
}

// UpdatePriceParams captures a seller's price edit.
type UpdatePriceParams struct {
	ListingID uuid.UUID
	UserID    uuid.UUID
	Price     decimal.Decimal
}

// ListParams configures pagination for listing queries.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult wraps returned listings and the cursor for the next page.
type ListResult struct {
	Items      []models.Listing `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
