package sales

import (
	"github.com/google/uuid"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
	"github.com/jsivak/soleplug-backend/pkg/enums"
)

// Actor identifies who performed a sale mutation, for the event trail.
type Actor struct {
	UserID uuid.UUID
	Role   enums.MemberRole
}

// TransitionParams captures an admin's sale update. Nil fields are left
// untouched; supplying no actual change makes the call a no-op.
type TransitionParams struct {
	SaleID     uuid.UUID
	NewStatus  *enums.SaleStatus
	ExternalID *string
	Notes      *string
	Actor      Actor
}

// ConvertParams captures the admin acceptance of a listing.
type ConvertParams struct {
	ListingID  uuid.UUID
	ExternalID string
	Actor      Actor
}

// ListParams configures pagination for sale queries.
type ListParams struct {
	Limit  int
	Cursor string
	Status *enums.SaleStatus
}

// ListResult wraps returned sales and the cursor for the next page.
type ListResult struct {
	Items      []models.Sale `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
